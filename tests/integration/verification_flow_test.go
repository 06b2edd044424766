package integration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menubox/menubox/internal/models"
	"github.com/menubox/menubox/internal/services"
)

type authResponse struct {
	AccessToken           string `json:"access_token"`
	VerificationEmailSent bool   `json:"verification_email_sent"`
	User                  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type statusResponse struct {
	Verified bool `json:"verified"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func TestVerificationFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	db, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	defer db.Teardown(ctx)

	ts := SetupTestServer(db.DB)
	defer ts.Close()

	email, password := TestUser("flow")

	// Sign up: token issued immediately, account unverified, code captured.
	resp, err := ts.PostJSON("/auth/signup", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.NoError(t, err)

	var signup authResponse
	require.NoError(t, DecodeBody(resp, &signup))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, signup.AccessToken)
	assert.True(t, signup.VerificationEmailSent)
	require.Equal(t, 1, ts.Gateway.Count())

	token := signup.AccessToken
	uid := signup.User.ID

	// Unverified owners are blocked from protected owner functionality.
	resp, err = ts.PostJSON("/restaurants", token, map[string]string{"name": "Beirut Bites"})
	require.NoError(t, err)
	var gateErr errorResponse
	require.NoError(t, DecodeBody(resp, &gateErr))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "email_not_verified", gateErr.Error)

	// Status reads false before redemption.
	resp, err = ts.GetJSON("/verification/status", token)
	require.NoError(t, err)
	var status statusResponse
	require.NoError(t, DecodeBody(resp, &status))
	assert.False(t, status.Verified)

	// An immediate resend bounces off the cooldown.
	resp, err = ts.PostJSON("/verification/resend", token, map[string]string{"uid": uid})
	require.NoError(t, err)
	var resendErr errorResponse
	require.NoError(t, DecodeBody(resp, &resendErr))
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "too_soon", resendErr.Error)
	assert.Equal(t, 1, ts.Gateway.Count(), "rejected resend sends nothing")

	// A wrong code is rejected without consuming the record.
	resp, err = ts.PostJSON("/verification/redeem", token, map[string]string{
		"uid": uid, "code": "000000",
	})
	require.NoError(t, err)
	var redeemErr errorResponse
	require.NoError(t, DecodeBody(resp, &redeemErr))
	if resp.StatusCode == http.StatusBadRequest && redeemErr.Error == "invalid_code" {
		// expected unless the random code happened to be 000000
	} else {
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	// The captured code redeems successfully.
	code := ts.Gateway.LastCode()
	require.Len(t, code, 6)

	resp, err = ts.PostJSON("/verification/redeem", token, map[string]string{
		"uid": uid, "code": code,
	})
	require.NoError(t, err)
	var redeemOK map[string]string
	require.NoError(t, DecodeBody(resp, &redeemOK))
	if code != "000000" {
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "verified", redeemOK["status"])
	}

	// Status flips to true and the gate opens.
	resp, err = ts.GetJSON("/verification/status", token)
	require.NoError(t, err)
	require.NoError(t, DecodeBody(resp, &status))
	assert.True(t, status.Verified)

	resp, err = ts.PostJSON("/restaurants", token, map[string]string{"name": "Beirut Bites"})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Redeeming twice reports already verified.
	resp, err = ts.PostJSON("/verification/redeem", token, map[string]string{
		"uid": uid, "code": code,
	})
	require.NoError(t, err)
	require.NoError(t, DecodeBody(resp, &redeemErr))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "already_verified", redeemErr.Error)
}

// Concurrent redeems of one valid code race on the record's row lock; the
// service is driven directly against the real repository so the transport
// rate limit stays out of the way.
func TestVerificationFlow_ConcurrentRedeem(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	db, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	defer db.Teardown(ctx)

	email, password := TestUser("concurrent")
	user, err := SeedUser(ctx, db.Pool, email, password, false)
	require.NoError(t, err)

	userRepo, verificationRepo, _, _ := InitializeRepositories(db.DB)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	gateway := &CapturingEmailGateway{}
	svc := services.NewVerificationService(verificationRepo, userRepo, gateway, logger, "Menubox")

	require.NoError(t, svc.Issue(ctx, user.ID, user.Email))
	code := gateway.LastCode()
	require.Len(t, code, 6)

	const attempts = 8
	results := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Redeem(ctx, user.ID, user.ID, code)
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, alreadyVerified int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, models.ErrAlreadyVerified):
			alreadyVerified++
		default:
			t.Fatalf("unexpected redeem error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, alreadyVerified)

	// The winning transaction also flipped the profile flag.
	fetched, err := userRepo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Verified())
}

func TestVerificationFlow_Login(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	db, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	defer db.Teardown(ctx)

	ts := SetupTestServer(db.DB)
	defer ts.Close()

	email, password := TestUser("login")
	_, err = SeedUser(ctx, db.Pool, email, password, true)
	require.NoError(t, err)

	resp, err := ts.PostJSON("/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.NoError(t, err)

	var login authResponse
	require.NoError(t, DecodeBody(resp, &login))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, login.AccessToken)

	// Wrong password and unknown email both read as invalid credentials.
	resp, err = ts.PostJSON("/auth/login", "", map[string]string{
		"email":    email,
		"password": "WrongPassword123",
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = ts.PostJSON("/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": password,
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
