package guard

import (
	"net/http"

	goDash "github.com/MrEthical07/goDash"
)

// Middleware applies policy to HTTP requests for a locally served dashboard.
// Requests the policy would redirect get a 302 to the entry view.
func Middleware(policy Policy, source interface{ State() goDash.State }) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authenticated := source != nil && source.State() == goDash.StateAuthenticated
			d := policy.Decide(r.URL.Path, authenticated)
			if !d.Render() {
				http.Redirect(w, r, d.View, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
