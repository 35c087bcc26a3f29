package request

import (
	"fmt"
	"io"
	"net/http"
)

// Error checks the given http response for an error code, and, if one is
// present, reads the body and returns a friendly error.
func Error(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bs, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err != nil {
			return fmt.Errorf("http status code %d; error reading body: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("http status code %d: %s", resp.StatusCode, string(bs))
	}
	return nil
}
