package bus

import "github.com/thelolagemann/gbbus/internal/types"

// Guard runs fn and returns the *types.AccessError it panicked
// with, if any. Any other panic is propagated.
func Guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*types.AccessError); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}
