package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsClientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "order id required",
			err:  ErrOrderIDRequired,
			want: true,
		},
		{
			name: "wrapped invalid mode",
			err:  fmt.Errorf("create order: %w", ErrInvalidMode),
			want: true,
		},
		{
			name: "upstream error",
			err:  &UpstreamError{Op: OpCapture, Status: 422},
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsClientError(tt.err); got != tt.want {
				t.Errorf("IsClientError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUpstreamError_Error(t *testing.T) {
	err := &UpstreamError{Op: OpToken, Status: 401, Body: []byte("{\"error\":\"invalid_client\"}\n")}

	want := `oauth2 error 401 {"error":"invalid_client"}`
	if err.Error() != want {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestAsUpstream(t *testing.T) {
	wrapped := fmt.Errorf("capture order ABC: %w", &UpstreamError{Op: OpCapture, Status: 422})

	upstream, ok := AsUpstream(wrapped)
	if !ok {
		t.Fatal("expected upstream error in chain")
	}
	if upstream.Status != 422 {
		t.Errorf("expected status 422, got %d", upstream.Status)
	}

	if _, ok := AsUpstream(errors.New("dial tcp: timeout")); ok {
		t.Error("plain error must not be reported as upstream")
	}
}
