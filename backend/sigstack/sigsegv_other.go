//go:build !linux || !cgo

package sigstack

// ReapplySigsegvOnstack is a no-op outside Linux; the SA_ONSTACK patch only
// matters when WebKitGTK installs its own SIGSEGV handler.
func ReapplySigsegvOnstack() error {
	return nil
}

// StartPatchLoop is a no-op outside Linux.
func StartPatchLoop() {}
