package middlewares

import (
	"net/http"
	"time"

	"rephrasecoach/internal/flow"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// Sessions attaches the visitor's session to the context, starting a new one
// when the cookie is missing, unknown or expired.
func Sessions(store *flow.Store, cookieName string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *flow.Session
		if id, err := c.Cookie(cookieName); err == nil && id != "" {
			sess = store.Get(id)
		}
		if sess == nil {
			sess = store.Create()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, sess.ID, int(ttl.Seconds()), "/", "", false, true)
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// CurrentSession returns the session set by Sessions, or nil outside it.
func CurrentSession(c *gin.Context) *flow.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*flow.Session)
	return sess
}
