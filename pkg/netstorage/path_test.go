package netstorage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathFromString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"//a/b//", "a/b"},
		{`\a\`, "a"},
		{"a//b", "a//b"},
		{"/dir/file.txt", "dir/file.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			once := PathFromString(tt.in)
			assert.Equal(t, tt.want, once.String())
			assert.True(t, PathFromString(once.String()).Equal(once), "normalizing twice changes nothing")
		})
	}
}

func TestPathRoot(t *testing.T) {
	root := RootPath()
	assert.True(t, root.IsRoot())
	assert.True(t, PathFromString("///").IsRoot())
	assert.Nil(t, root.Segments())
	assert.Equal(t, "", root.Base())
	assert.True(t, root.Dir().IsRoot())
}

func TestPathAppendPrepend(t *testing.T) {
	a := PathFromString("a/b")
	b := PathFromString("c")

	assert.Equal(t, "a/b/c", a.Append(b).String())
	assert.Equal(t, "c/a/b", a.Prepend(b).String())
	assert.Equal(t, "a/b", a.Append(RootPath()).String())
	assert.Equal(t, "a/b", RootPath().Append(a).String())
	assert.Equal(t, "a/b", a.Prepend(RootPath()).String())

	// Append is associative and result equals the normalized concatenation.
	x, y, z := PathFromString("/x/"), PathFromString("y/"), PathFromString("/z")
	assert.True(t, x.Append(y).Append(z).Equal(x.Append(y.Append(z))))
	assert.Equal(t, "x/y/z", x.Append(y).Append(z).String())
}

func TestPathSegmentsBaseDir(t *testing.T) {
	p := PathFromString("a/b/c.txt")
	assert.Equal(t, []string{"a", "b", "c.txt"}, p.Segments())
	assert.Equal(t, "c.txt", p.Base())
	assert.Equal(t, "a/b", p.Dir().String())
	assert.Equal(t, "a", PathFromString("a").Base())
	assert.True(t, PathFromString("a").Dir().IsRoot())
}

func TestPathContainsPathPart(t *testing.T) {
	p := PathFromString("site/assets/img")
	assert.True(t, p.ContainsPathPart(PathFromString("assets")))
	assert.False(t, p.ContainsPathPart(PathFromString("asset")))
	assert.False(t, p.ContainsPathPart(PathFromString("site/assets")))
}

func TestPathURLEncode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dir/file name.txt", "dir/file%20name.txt"},
		{"a+b/c&d", "a%2Bb/c%26d"},
		{"ünï/çødé", "%C3%BCn%C3%AF/%C3%A7%C3%B8d%C3%A9"},
		{"safe-_.~", "safe-_.~"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p := PathFromString(tt.in)
			encoded := p.URLEncode()
			assert.Equal(t, tt.want, encoded.String())
			assert.True(t, encoded.URLDecode().Equal(p), "decode reverses encode")
		})
	}
}

func TestPathURLDecodeKeepsInvalidSegments(t *testing.T) {
	assert.Equal(t, "100%/ok dir", PathFromString("100%/ok%20dir").URLDecode().String())
}

func TestPathJSON(t *testing.T) {
	data, err := json.Marshal(struct{ P Path }{PathFromString("/a/b/")})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"P":"a/b"}`, string(data))

	var out struct{ P Path }
	assert.NoError(t, json.Unmarshal([]byte(`{"P":"/x/y"}`), &out))
	assert.Equal(t, "x/y", out.P.String())
}
