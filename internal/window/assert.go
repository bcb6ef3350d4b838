//go:build !debug

package window

const assertionsDefault = false
