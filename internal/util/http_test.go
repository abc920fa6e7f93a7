package util

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSetsIdentityHeaders(t *testing.T) {
	var ua, cookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		cookie = r.Header.Get("Cookie")
	}))
	defer srv.Close()

	cookieFile := filepath.Join(t.TempDir(), "cookies.txt")
	require.NoError(t, os.WriteFile(cookieFile, []byte("\n  session=abc  \nignored=1\n"), 0644))

	c, err := NewHTTPClient(HTTPClientOptions{Cookie: "a=1", CookieFile: cookieFile})
	require.NoError(t, err)

	resp, err := c.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, DefaultUserAgent, ua)
	assert.Equal(t, "a=1; session=abc", cookie)
}

func TestApplyProxy(t *testing.T) {
	tr := &http.Transport{}
	require.NoError(t, applyProxy(tr, "127.0.0.1:9050"))
	assert.Nil(t, tr.Proxy)
	assert.NotNil(t, tr.DialContext)

	tr = &http.Transport{}
	require.NoError(t, applyProxy(tr, "http://proxy.local:3128"))
	assert.NotNil(t, tr.Proxy)

	assert.Error(t, applyProxy(&http.Transport{}, "ftp://x"))
	assert.NoError(t, applyProxy(&http.Transport{}, ""))
}

func TestRedactProxy(t *testing.T) {
	assert.Equal(t, "socks5://me@h:1", redactProxy("socks5://me:secret@h:1"))
	assert.Equal(t, "h:1", redactProxy("h:1"))
}
