package fetcher

import (
	"context"
	"errors"
	"testing"
)

func TestAuthenticated_NormalPage(t *testing.T) {
	html := []byte(`<!DOCTYPE html>
<html><body>
<div id="content"><table id="results"><tr><td>Race A</td></tr></table></div>
</body></html>`)
	if !Authenticated("https://example.com/events.php?zid=42", html) {
		t.Error("expected authenticated for a content page")
	}
}

func TestAuthenticated_LoginRedirectURL(t *testing.T) {
	html := []byte(`<html><body><p>Redirecting</p></body></html>`)
	cases := []string{
		"https://example.com/login",
		"https://example.com/ucp.php?mode=login&redirect=events",
		"https://auth.example.com/auth/realms/main",
		"https://example.com/signin?next=%2Fevents",
	}
	for _, u := range cases {
		if Authenticated(u, html) {
			t.Errorf("expected unauthenticated for %s", u)
		}
	}
}

func TestAuthenticated_LoginForm(t *testing.T) {
	html := []byte(`<html><body>
<form method="post" action="./ucp.php?mode=login">
<input type="text" name="username">
<input type="password" name="password">
</form>
</body></html>`)
	if Authenticated("https://example.com/events.php", html) {
		t.Error("expected unauthenticated when a login form is present")
	}
}

func TestAuthenticated_PasswordOutsideForm(t *testing.T) {
	// A password input not inside a form (e.g. a change-password widget
	// fragment in docs) should not flip the signal.
	html := []byte(`<html><body><input type="password"><table><tr><td>x</td></tr></table></body></html>`)
	if !Authenticated("https://example.com/profile", html) {
		t.Error("password input outside a form should not mean login page")
	}
}

func TestClassify(t *testing.T) {
	err := classify("navigate", context.DeadlineExceeded)
	var fe *Error
	if !errors.As(err, &fe) || fe.Kind != KindTimeout {
		t.Fatalf("deadline should classify as timeout, got %v", err)
	}

	err = classify("navigate", errors.New("net::ERR_CONNECTION_REFUSED"))
	if !errors.As(err, &fe) || fe.Kind != KindNetwork {
		t.Fatalf("generic failure should classify as network, got %v", err)
	}
}
