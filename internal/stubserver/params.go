package stubserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func userIDParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "userID"))
}
