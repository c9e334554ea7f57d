package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

const (
	maxBodyBytes   = 1 << 20
	msgInvalidBody = "Invalid request body"
	msgServerError = "Something went wrong!"
)

var errEmptyBody = errors.New("empty request body")

// decodeJSON reads the request body into dst. A body that is empty or only
// whitespace yields errEmptyBody.
func decodeJSON(r *http.Request, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return errEmptyBody
	}
	return json.Unmarshal(raw, dst)
}
