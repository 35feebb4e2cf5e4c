package memberapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bioassoc/memberhub/internal/domain/member"
)

func TestSignInSendsActionAndParsesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["action"] != "sign_in" {
			t.Errorf("action = %q", body["action"])
		}
		if body["email"] != "ada@example.org" {
			t.Errorf("email = %q", body["email"])
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123",
			"user": map[string]string{
				"id": "u-1", "email": "ada@example.org", "userType": "member",
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)

	res, err := c.SignIn(context.Background(), "ada@example.org", "pw")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if res.AccessToken != "tok-123" {
		t.Errorf("token = %q", res.AccessToken)
	}
	if res.User.ID != "u-1" || res.User.Type != member.TypeMember {
		t.Errorf("user = %+v", res.User)
	}
}

func TestAuthenticatedCallsCarryBearerHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		_ = json.NewEncoder(w).Encode(member.Profile{UserID: "u-1"})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)

	if _, err := c.MemberProfile(context.Background(), "tok-123", "u-1"); err != nil {
		t.Fatalf("MemberProfile: %v", err)
	}
}

func TestErrorDecoding(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantKind  Kind
		wantFlat  string
	}{
		{
			name:     "messages list",
			status:   401,
			body:     `{"error":"invalid_credentials","messages":["Invalid password"]}`,
			wantKind: KindAuth,
			wantFlat: "Invalid password",
		},
		{
			name:     "multiple messages joined",
			status:   422,
			body:     `{"messages":["Email is taken","Password too short"]}`,
			wantKind: KindValidation,
			wantFlat: "Email is taken, Password too short",
		},
		{
			name:     "error string only",
			status:   404,
			body:     `{"error":"member not found"}`,
			wantKind: KindNotFound,
			wantFlat: "member not found",
		},
		{
			name:     "unusable body",
			status:   502,
			body:     `<html>bad gateway</html>`,
			wantKind: KindUnavailable,
			wantFlat: "Something went wrong. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(srv.URL, nil)

			_, err := c.SignIn(context.Background(), "ada@example.org", "pw")
			if err == nil {
				t.Fatal("expected error")
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error type %T", err)
			}

			if apiErr.Status != tt.status {
				t.Errorf("Status = %d", apiErr.Status)
			}
			if apiErr.Kind() != tt.wantKind {
				t.Errorf("Kind = %q, want %q", apiErr.Kind(), tt.wantKind)
			}
			if got := apiErr.Flatten(); got != tt.wantFlat {
				t.Errorf("Flatten = %q, want %q", got, tt.wantFlat)
			}
		})
	}
}

func TestForgotPasswordNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)

	if err := c.ForgotPassword(context.Background(), "ada@example.org"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
}
