package middleware

import "github.com/julienschmidt/httprouter"

// Middleware wraps a router handle.
type Middleware func(httprouter.Handle) httprouter.Handle

// Chain applies mws so that the first one runs first.
func Chain(mws ...Middleware) Middleware {
	return func(final httprouter.Handle) httprouter.Handle {
		for i := len(mws) - 1; i >= 0; i-- {
			final = mws[i](final)
		}
		return final
	}
}
