package blob

import (
	"strings"
	"testing"
)

func TestObjectKey(t *testing.T) {
	key := objectKey("products", "Sunset Photo.JPG")
	if !strings.HasPrefix(key, "products/") || !strings.HasSuffix(key, ".jpg") {
		t.Fatalf("unexpected key %q", key)
	}
	if strings.Contains(key, "Sunset") {
		t.Fatalf("client file name must not leak into the key: %q", key)
	}

	traversal := objectKey("requests", "..\\..\\etc\\passwd")
	if !strings.HasPrefix(traversal, "requests/") || strings.Contains(traversal, "..") {
		t.Fatalf("unexpected key %q", traversal)
	}

	if a, b := objectKey("x", "a.png"), objectKey("x", "a.png"); a == b {
		t.Fatalf("keys must be unique, got %q twice", a)
	}
}

func TestPublicBase(t *testing.T) {
	cases := []struct {
		cfg  Config
		want string
	}{
		{Config{Endpoint: "minio:9000"}, "http://minio:9000"},
		{Config{Endpoint: "s3.example.com", UseSSL: true}, "https://s3.example.com"},
		{Config{Endpoint: "minio:9000", PublicURL: "https://cdn.example.com/"}, "https://cdn.example.com"},
	}
	for _, tc := range cases {
		if got := publicBase(tc.cfg); got != tc.want {
			t.Fatalf("publicBase(%+v) = %q, want %q", tc.cfg, got, tc.want)
		}
	}
}
