package vision

import (
	"strings"
	"testing"
)

func TestDataURLSniffsPNG(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}

	url := dataURL(png)
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("unexpected data URL prefix: %q", url[:min(len(url), 40)])
	}
}

func TestDataURLSniffsJPEG(t *testing.T) {
	jpeg := []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0, 0, 0}

	url := dataURL(jpeg)
	if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Fatalf("unexpected data URL prefix: %q", url)
	}
}

func TestDataURLUnknownBytesFallBack(t *testing.T) {
	url := dataURL([]byte{0x00, 0x01, 0x02, 0x03})
	if !strings.HasPrefix(url, "data:application/octet-stream;base64,") {
		t.Fatalf("unexpected data URL prefix: %q", url)
	}
}
