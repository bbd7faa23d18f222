package netstoragetest

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/netstorage/pkg/netstorage"
)

func TestStorePutGet(t *testing.T) {
	s := NewStore("1")
	require.NoError(t, s.Put("1/a/b/c.txt", []byte("abc")))

	data, err := s.Get("/1/a/b/c.txt/")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)

	assert.Equal(t, []string{"1", "1/a", "1/a/b", "1/a/b/c.txt"}, s.Paths())

	_, err = s.Get("1/a")
	assert.ErrorIs(t, err, errIsDir)
	_, err = s.Get("1/missing")
	assert.ErrorIs(t, err, errNotFound)
	assert.ErrorIs(t, s.Put("1/a", []byte("x")), errIsDir)
}

func TestStoreStat(t *testing.T) {
	clock := time.Unix(1700000000, 0)
	s := NewStore("1")
	s.SetClock(func() time.Time { return clock })
	require.NoError(t, s.Put("1/d/a.txt", []byte("hello")))
	require.NoError(t, s.Put("1/d/e/b.txt", []byte("!")))

	f, err := s.Stat("1/d/a.txt")
	require.NoError(t, err)
	assert.Equal(t, netstorage.FileTypeFile, f.Type)
	assert.Equal(t, "1/d", f.Path.String())
	assert.Equal(t, int64(5), f.Size)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", f.MD5)
	assert.True(t, f.MTime.Equal(clock))

	d, err := s.Stat("1/d")
	require.NoError(t, err)
	assert.Equal(t, netstorage.FileTypeDir, d.Type)
	assert.Equal(t, int64(2), d.Files)
	assert.Equal(t, int64(6), d.Bytes)
}

func TestStoreListDeleteRmdir(t *testing.T) {
	s := NewStore("1")
	require.NoError(t, s.Put("1/d/b.txt", []byte("b")))
	require.NoError(t, s.Put("1/d/a.txt", []byte("a")))
	s.Symlink("1/d/link", "a.txt")

	files, err := s.List("1/d")
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "a.txt", files[0].Name)
	assert.Equal(t, "b.txt", files[1].Name)
	assert.Equal(t, "a.txt", files[2].Target)

	_, err = s.List("1/d/a.txt")
	assert.ErrorIs(t, err, errNotDir)

	assert.ErrorIs(t, s.Rmdir("1/d"), errNotEmpty)
	assert.ErrorIs(t, s.Delete("1/d"), errIsDir)

	for _, name := range []string{"a.txt", "b.txt", "link"} {
		require.NoError(t, s.Delete("1/d/"+name))
	}
	assert.ErrorIs(t, s.Delete("1/d/a.txt"), errNotFound)
	require.NoError(t, s.Rmdir("1/d"))
	assert.False(t, s.Exists("1/d"))
}

func TestStoreMkdirUsage(t *testing.T) {
	s := NewStore("1")
	require.NoError(t, s.Mkdir("1/x/y"))
	require.NoError(t, s.Put("1/x/y/z", []byte("1234")))
	assert.ErrorIs(t, s.Mkdir("1/x/y/z"), errNotDir)

	files, bytes, err := s.Usage("1/x")
	require.NoError(t, err)
	assert.Equal(t, int64(1), files)
	assert.Equal(t, int64(4), bytes)

	_, _, err = s.Usage("1/nope")
	assert.ErrorIs(t, err, errNotFound)
}

func TestServerRejectsUnsignedRequests(t *testing.T) {
	srv := NewServer(netstorage.NewCredential("k", "s"), "1")
	defer srv.Close()

	client := srv.Client()

	resp, err := client.Get(srv.URL + "/1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/1", nil)
	require.NoError(t, err)
	req.Header.Set(netstorage.ActionHeader, netstorage.ActionStat.Header())
	req.Header.Set(netstorage.AuthDataHeader, "5, 0.0.0.0, 0.0.0.0, 1, nonce, k")
	req.Header.Set(netstorage.AuthSignHeader, "forged")

	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	require.Len(t, srv.Requests(), 2)
	assert.Equal(t, "stat", srv.Requests()[1].Action)
}

func TestServerAcceptsSignedRequests(t *testing.T) {
	cred := netstorage.NewCredential("k", "s")
	srv := NewServer(cred, "1")
	defer srv.Close()

	client := &http.Client{Transport: netstorage.Authentication(netstorage.NewSigner(cred))(srv.Transport())}

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/1", nil)
	require.NoError(t, err)
	req.Header.Set(netstorage.ActionHeader, netstorage.ActionDu.Header())

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	srv.FailOn(netstorage.ActionDu, "/1/", http.StatusServiceUnavailable)
	req, err = http.NewRequest(http.MethodGet, srv.URL+"/1", nil)
	require.NoError(t, err)
	req.Header.Set(netstorage.ActionHeader, netstorage.ActionDu.Header())

	resp2, err := client.Do(req)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp2.StatusCode)
	assert.Equal(t, 2, srv.Count(netstorage.ActionDu))
}
