package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"airkiosk/protocol"
)

// approvalHTTP is the client for the one-shot decision call. Bounded
// so a dead approval endpoint cannot pin a goroutine for long.
var approvalHTTP = &http.Client{Timeout: 10 * time.Second}

// SendDecision posts the approval decision for the current report to
// the approval endpoint. This is a separate one-shot request, not a
// message on the persistent channel. Callers treat a failure as a
// side-effect error: log it, never roll back the stage transition
// already shown to the user.
func SendDecision(ctx context.Context, endpoint, sessionID string, approved bool) error {
	body, err := json.Marshal(protocol.Decision{Approved: approved})
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build decision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}

	resp, err := approvalHTTP.Do(req)
	if err != nil {
		return fmt.Errorf("decision request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("approval endpoint returned %s", resp.Status)
	}
	return nil
}
