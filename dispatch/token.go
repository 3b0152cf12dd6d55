package dispatch

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jobClaims binds the run parameters into the minted credential so an
// endpoint can verify that the token it received authorizes exactly this
// call and nothing else.
type jobClaims struct {
	Target          string `json:"tgt"`
	Port            int    `json:"prt"`
	DurationSeconds int    `json:"dur"`
	Method          string `json:"mtd"`
	jwt.RegisteredClaims
}

func mintJobToken(key []byte, job Job, ttl time.Duration, now time.Time) (string, error) {
	claims := jobClaims{
		Target:          job.Target,
		Port:            job.Port,
		DurationSeconds: job.DurationSeconds,
		Method:          job.Method,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        job.SessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}
