package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/blogsphere/backend/internal/common/clock"
)

const (
	testAccessSecret  = "access-secret-0123456789abcdefghijkl"
	testRefreshSecret = "refresh-secret-0123456789abcdefghijk"
)

func newTestCodec() (*Codec, *clock.MockClock) {
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return NewCodec(testAccessSecret, testRefreshSecret, clk), clk
}

func TestCodec_AccessRoundTrip(t *testing.T) {
	codec, clk := newTestCodec()

	tok, err := codec.SignAccess("user-1", 30*time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	clk.Advance(30*time.Minute - time.Second)
	sub, err := codec.Verify(tok, ClassAccess)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if sub != "user-1" {
		t.Errorf("expected subject user-1, got %s", sub)
	}

	clk.Advance(2 * time.Second)
	if _, err := codec.Verify(tok, ClassAccess); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestCodec_RefreshRoundTrip(t *testing.T) {
	codec, clk := newTestCodec()

	tok, err := codec.SignRefresh("user-1", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	sub, err := codec.Verify(tok, ClassRefresh)
	if err != nil || sub != "user-1" {
		t.Fatalf("expected user-1, got %q err=%v", sub, err)
	}

	clk.Advance(time.Hour + time.Second)
	if _, err := codec.Verify(tok, ClassRefresh); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestCodec_RefreshTokensAreUnique(t *testing.T) {
	codec, _ := newTestCodec()

	first, _ := codec.SignRefresh("user-1", time.Hour)
	second, _ := codec.SignRefresh("user-1", time.Hour)

	if first == second {
		t.Error("refresh tokens minted in the same second must differ")
	}
}

func TestCodec_ClassesAreNotInterchangeable(t *testing.T) {
	codec, _ := newTestCodec()

	access, _ := codec.SignAccess("user-1", time.Minute)
	refresh, _ := codec.SignRefresh("user-1", time.Minute)

	if _, err := codec.Verify(access, ClassRefresh); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("access token verified as refresh: %v", err)
	}
	if _, err := codec.Verify(refresh, ClassAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("refresh token verified as access: %v", err)
	}
}

func TestCodec_RejectsWrongClassWithSameSecret(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	codec := NewCodec(testAccessSecret, testAccessSecret, clk)

	refresh, _ := codec.SignRefresh("user-1", time.Minute)
	if _, err := codec.Verify(refresh, ClassAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected typ check to reject, got %v", err)
	}
}

func TestCodec_RejectsTampering(t *testing.T) {
	codec, _ := newTestCodec()

	tok, _ := codec.SignAccess("user-1", time.Minute)
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token format")
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := codec.Verify(tampered, ClassAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestCodec_RejectsForeignSecretAndAlgorithm(t *testing.T) {
	codec, clk := newTestCodec()
	now := clk.Now()

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"typ": "access",
		"iat": now.Unix(),
		"exp": now.Add(time.Minute).Unix(),
	})
	signed, _ := foreign.SignedString([]byte("some-other-secret-0123456789abcdef"))
	if _, err := codec.Verify(signed, ClassAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for foreign secret, got %v", err)
	}

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "user-1",
		"typ": "access",
		"iat": now.Unix(),
		"exp": now.Add(time.Minute).Unix(),
	})
	signed, _ = hs512.SignedString([]byte(testAccessSecret))
	if _, err := codec.Verify(signed, ClassAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for HS512, got %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-1",
		"typ": "access",
		"exp": now.Add(time.Minute).Unix(),
	})
	signed, _ = none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := codec.Verify(signed, ClassAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for alg none, got %v", err)
	}
}

func TestCodec_RejectsMissingClaims(t *testing.T) {
	codec, clk := newTestCodec()
	now := clk.Now()

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"typ": "access",
	})
	signed, _ := noExp.SignedString([]byte(testAccessSecret))
	if _, err := codec.Verify(signed, ClassAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken without exp, got %v", err)
	}

	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"typ": "access",
		"exp": now.Add(time.Minute).Unix(),
	})
	signed, _ = noSub.SignedString([]byte(testAccessSecret))
	if _, err := codec.Verify(signed, ClassAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken without sub, got %v", err)
	}
}

func TestCodec_MalformedInput(t *testing.T) {
	codec, _ := newTestCodec()

	for _, in := range []string{"", "garbage", "a.b.c"} {
		if _, err := codec.Verify(in, ClassAccess); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q): expected ErrInvalidToken, got %v", in, err)
		}
	}
}

func TestCodec_EmptySubject(t *testing.T) {
	codec, _ := newTestCodec()

	if _, err := codec.SignAccess("", time.Minute); !errors.Is(err, ErrEmptySubject) {
		t.Errorf("expected ErrEmptySubject, got %v", err)
	}
}
