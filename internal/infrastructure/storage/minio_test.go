package storage

import "testing"

func TestBuildPublicURL(t *testing.T) {
	cases := []struct {
		base, bucket, path, want string
	}{
		{"https://cdn.example.com/public/", "resumes", "/u1/cv.pdf", "https://cdn.example.com/public/resumes/u1/cv.pdf"},
		{"https://cdn.example.com", "", "cv.pdf", "https://cdn.example.com/cv.pdf"},
		{"https://cdn.example.com", "resumes", "", ""},
	}
	for _, tc := range cases {
		if got := BuildPublicURL(tc.base, tc.bucket, tc.path); got != tc.want {
			t.Errorf("BuildPublicURL(%q, %q, %q) = %q, want %q", tc.base, tc.bucket, tc.path, got, tc.want)
		}
	}
}

func TestStaticURLs(t *testing.T) {
	u := StaticURLs{Base: "http://localhost:9000", Bucket: "resumes"}
	if got := u.PublicURL("a.pdf"); got != "http://localhost:9000/resumes/a.pdf" {
		t.Fatalf("unexpected url %s", got)
	}
}
