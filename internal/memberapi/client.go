// Package memberapi is the HTTP client for the external members API.
// It owns wire shapes, bearer-header attachment, and error decoding;
// nothing else in the codebase builds requests against that API.
package memberapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bioassoc/memberhub/internal/domain/member"
)

// Recorder matches observability.Prom's upstream hook. Tests pass nil.
type Recorder interface {
	ObserveUpstream(op string, fn func() error) error
}

type Client struct {
	baseURL string
	http    *http.Client
	rec     Recorder
}

func New(baseURL string, rec Recorder) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		rec:     rec,
	}
}

type AuthResult struct {
	AccessToken string      `json:"access_token"`
	User        member.User `json:"user"`
}

type SignUpInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	UserType  string `json:"userType"`
}

type signInRequest struct {
	Action   string `json:"action"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Action string `json:"action"`
	SignUpInput
}

type forgotPasswordRequest struct {
	Action string `json:"action"`
	Email  string `json:"email"`
}

type registerMemberRequest struct {
	UserID string `json:"userId"`
	member.ProfileInput
}

type updateProfileRequest struct {
	MemberID string `json:"memberId"`
	member.ProfileInput
}

type applyRequest struct {
	UserID string `json:"userId"`
	member.ApplicationInput
}

func (c *Client) SignIn(ctx context.Context, email, password string) (AuthResult, error) {
	var out AuthResult
	err := c.observe("sign_in", func() error {
		return c.do(ctx, http.MethodPost, "/auth", "", signInRequest{Action: "sign_in", Email: email, Password: password}, &out)
	})
	return out, err
}

func (c *Client) SignUp(ctx context.Context, in SignUpInput) (AuthResult, error) {
	var out AuthResult
	err := c.observe("sign_up", func() error {
		return c.do(ctx, http.MethodPost, "/auth", "", signUpRequest{Action: "sign_up", SignUpInput: in}, &out)
	})
	return out, err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.observe("forgot_password", func() error {
		return c.do(ctx, http.MethodPost, "/auth", "", forgotPasswordRequest{Action: "forgot_password", Email: email}, nil)
	})
}

func (c *Client) MemberProfile(ctx context.Context, token, userID string) (member.Profile, error) {
	var out member.Profile
	err := c.observe("member_profile", func() error {
		return c.do(ctx, http.MethodGet, "/auth/member/"+userID, token, nil, &out)
	})
	return out, err
}

func (c *Client) RegisterMember(ctx context.Context, token, userID string, in member.ProfileInput) error {
	return c.observe("register_member", func() error {
		return c.do(ctx, http.MethodPost, "/auth/register-member", token, registerMemberRequest{UserID: userID, ProfileInput: in}, nil)
	})
}

func (c *Client) UpdateProfile(ctx context.Context, token, memberID string, in member.ProfileInput) error {
	return c.observe("update_profile", func() error {
		return c.do(ctx, http.MethodPut, "/auth/update-profile", token, updateProfileRequest{MemberID: memberID, ProfileInput: in}, nil)
	})
}

func (c *Client) Apply(ctx context.Context, token, userID string, in member.ApplicationInput) error {
	return c.observe("apply", func() error {
		return c.do(ctx, http.MethodPost, "/auth/apply", token, applyRequest{UserID: userID, ApplicationInput: in}, nil)
	})
}

func (c *Client) observe(op string, fn func() error) error {
	if c.rec == nil {
		return fn()
	}
	return c.rec.ObserveUpstream(op, fn)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader

	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decodeError(res)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// errorBody covers the shapes the members API has been seen returning.
type errorBody struct {
	Error    string   `json:"error"`
	Messages []string `json:"messages"`
}

func decodeError(res *http.Response) error {
	apiErr := &APIError{Status: res.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<16))
	if err != nil {
		return apiErr
	}

	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil {
		apiErr.Code = eb.Error
		apiErr.Messages = eb.Messages
	}

	return apiErr
}
