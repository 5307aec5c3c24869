package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WAV header is 44 bytes for standard PCM files
const wavHeaderSize = 44

func main() {
	audioFile := flag.String("audio", "../../testdata/consult.wav", "Path to the consult recording")
	serverURL := flag.String("server", "http://localhost:8080", "Service base URL")
	language := flag.String("language", "", "Spoken language (en or ml, empty for automatic detection)")
	flag.Parse()

	f, err := os.Open(*audioFile)
	if err != nil {
		log.Fatalf("Failed to open audio file: %v", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(*audioFile), ".wav") {
		validateWAV(f)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename=%q`, filepath.Base(*audioFile)))
	h.Set("Content-Type", contentTypeFor(*audioFile))
	part, err := mw.CreatePart(h)
	if err != nil {
		log.Fatalf("Failed to build upload: %v", err)
	}
	n, err := io.Copy(part, f)
	if err != nil {
		log.Fatalf("Failed to read audio file: %v", err)
	}
	if *language != "" {
		if err := mw.WriteField("language", *language); err != nil {
			log.Fatalf("Failed to build upload: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		log.Fatalf("Failed to build upload: %v", err)
	}

	log.Printf("Uploading %s (%d bytes, language=%q) to %s", filepath.Base(*audioFile), n, *language, *serverURL)

	client := &http.Client{Timeout: 5 * time.Minute}
	start := time.Now()
	resp, err := client.Post(*serverURL+"/api/asr", mw.FormDataContentType(), &buf)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Failed to read response: %v", err)
	}

	log.Printf("Completed in %v with status %s", time.Since(start), resp.Status)

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(pretty.String())
}

// validateWAV peeks at the header so obvious non-audio files fail here
// instead of server-side.
func validateWAV(f *os.File) {
	header := make([]byte, wavHeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		log.Fatalf("Failed to read WAV header: %v", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		log.Fatal("Not a valid WAV file")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		log.Fatalf("Failed to rewind audio file: %v", err)
	}
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	case ".mp3", ".mpeg":
		return "audio/mpeg"
	case ".webm":
		return "audio/webm"
	}
	return "application/octet-stream"
}
