package session

import (
	"encoding/base64"
	"testing"
)

const stateJSON = `{
  "cookies": [
    {"name": "phpbb3_sid", "value": "abc123", "domain": ".example.com",
     "path": "/", "expires": 1893456000, "httpOnly": true, "secure": true,
     "sameSite": "Lax"},
    {"name": "transient", "value": "x", "domain": "example.com",
     "path": "/", "expires": -1, "httpOnly": false, "secure": false,
     "sameSite": "None"}
  ],
  "origins": [
    {"origin": "https://example.com",
     "localStorage": [{"name": "token", "value": "t0"}]}
  ]
}`

func TestDecodeRawJSON(t *testing.T) {
	st, err := Decode([]byte(stateJSON))
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Cookies) != 2 {
		t.Fatalf("cookies = %d, want 2", len(st.Cookies))
	}
	if st.Cookies[0].Name != "phpbb3_sid" {
		t.Errorf("cookie name = %q", st.Cookies[0].Name)
	}
}

func TestDecodeBase64(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte(stateJSON))
	st, err := Decode([]byte(encoded + "\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Origins) != 1 {
		t.Fatalf("origins = %d, want 1", len(st.Origins))
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode([]byte("not json not base64!!")); err == nil {
		t.Error("expected error for garbage input")
	}
	if _, err := Decode([]byte("   ")); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	st, err := Decode([]byte(stateJSON))
	if err != nil {
		t.Fatal(err)
	}
	b64, err := st.EncodeBase64()
	if err != nil {
		t.Fatal(err)
	}
	back, err := Decode([]byte(b64))
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Cookies) != len(st.Cookies) {
		t.Errorf("cookies = %d, want %d", len(back.Cookies), len(st.Cookies))
	}
}

func TestCookieParams(t *testing.T) {
	st, _ := Decode([]byte(stateJSON))
	params := st.CookieParams()
	if len(params) != 2 {
		t.Fatalf("params = %d, want 2", len(params))
	}
	if params[0].Expires == 0 {
		t.Error("persistent cookie lost its expiry")
	}
	// Session cookies (-1) must not carry an expiry.
	if params[1].Expires != 0 {
		t.Errorf("session cookie expires = %v, want unset", params[1].Expires)
	}
}

func TestLocalStorageFor(t *testing.T) {
	st, _ := Decode([]byte(stateJSON))

	items := st.LocalStorageFor("https://example.com/events.php?zid=42")
	if len(items) != 1 || items[0].Name != "token" {
		t.Fatalf("items = %+v, want one token item", items)
	}

	if items := st.LocalStorageFor("https://other.com/"); items != nil {
		t.Errorf("unexpected items for foreign origin: %+v", items)
	}
}
