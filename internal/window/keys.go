package window

// Settings keys owned by the controller.
const (
	KeyPosition    = "RootView.Position"
	KeySize        = "RootView.Size"
	KeyMaximized   = "RootView.Maximized"
	KeyFullScreen  = "RootView.FullScreen"
	KeyPersistence = "RootView.Persistence"
	KeyVersion     = "RootView.Version"
)

// Keys written by earlier schema versions.
const (
	legacyKeyInit              = "RootView.Init"
	legacyKeyRestoreState      = "RootView.RestoreState"
	legacyKeyRestorePosition   = "RootView.RestorePosition"
	legacyKeyRestoreSize       = "RootView.RestoreSize"
	legacyKeyRestoreMaximized  = "RootView.RestoreMaximized"
	legacyKeyRestoreFullScreen = "RootView.RestoreFullScreen"
)

// CurrentVersion is the schema version written by this package.
const CurrentVersion int32 = 2
