package rest

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-edge/internal/jsondoc"
)

// CheckInResult is the server's answer to a device check-in.
type CheckInResult struct {
	// Changed is false when the server answered 304.
	Changed bool

	// Message is the optional "message" member of the response body.
	Message string
}

// CheckIn announces the device to the configured server.
// A 304 answer is not an error; it yields Changed == false.
func (c *Client) CheckIn(ctx context.Context, path string) (CheckInResult, error) {
	resp, err := c.Get(ctx, path)
	if errors.Is(err, ErrNotModified) {
		return CheckInResult{}, nil
	}
	if err != nil {
		return CheckInResult{}, err
	}

	result := CheckInResult{Changed: true}
	if len(resp.Body) == 0 {
		return result, nil
	}

	doc, err := jsondoc.Parse(resp.Body)
	if err != nil {
		return result, fmt.Errorf("check-in response: %w", err)
	}
	defer doc.Release()

	result.Message, _ = doc.GetString("message")
	return result, nil
}
