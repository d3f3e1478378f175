package service

import (
	"net/http"
	"strings"

	"github.com/yaron8/netwatch/auth"
)

func parseBearer(secret []byte, r *http.Request) (*auth.Claims, error) {
	token := r.URL.Query().Get("token")
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimPrefix(h, "Bearer ")
	}
	if token == "" {
		return nil, auth.ErrInvalid
	}
	return auth.Parse(secret, token)
}
