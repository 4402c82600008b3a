package clients_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/maastricht-university/meeting-clarity/clients"
	"github.com/maastricht-university/meeting-clarity/transcript"
)

const diarized = `{"utterances":[
  {"speaker":"A","text":"Let's leverage synergy","start":0.5,"end":2.0},
  {"speaker":"B","text":"Agreed","start":2.1,"end":2.6}
],"duration":2.6,"language":"en"}`

var _ = Describe("ASR", func() {
	var (
		audio string
		calls atomic.Int32
	)

	BeforeEach(func() {
		calls.Store(0)
		audio = filepath.Join(GinkgoT().TempDir(), "meeting.wav")
		Expect(os.WriteFile(audio, []byte("RIFFfake"), 0o644)).To(Succeed())
	})

	serve := func(h http.HandlerFunc) *clients.ASR {
		srv := httptest.NewServer(h)
		DeferCleanup(srv.Close)
		return clients.NewASR(clients.NewHTTPWithTimeout(5*time.Second), srv.URL, 2).WithBackoff(time.Millisecond)
	}

	It("uploads the file and decodes diarized utterances", func() {
		asr := serve(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			defer GinkgoRecover()
			Expect(r.URL.Path).To(Equal("/transcribe"))
			Expect(r.FormValue("speaker_labels")).To(Equal("true"))
			f, hdr, err := r.FormFile("file")
			Expect(err).NotTo(HaveOccurred())
			Expect(hdr.Filename).To(Equal("meeting.wav"))
			body, _ := io.ReadAll(f)
			Expect(string(body)).To(Equal("RIFFfake"))
			_, _ = w.Write([]byte(diarized))
		})

		resp, err := asr.Transcribe(context.Background(), audio)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Language).To(Equal("en"))
		Expect(resp.Transcript()).To(Equal([]transcript.Utterance{
			{Speaker: "A", Text: "Let's leverage synergy", Start: 0.5, End: 2.0},
			{Speaker: "B", Text: "Agreed", Start: 2.1, End: 2.6},
		}))
		Expect(calls.Load()).To(Equal(int32(1)))
	})

	It("retries server errors", func() {
		asr := serve(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				http.Error(w, "busy", http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(diarized))
		})

		resp, err := asr.Transcribe(context.Background(), audio)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Utterances).To(HaveLen(2))
		Expect(calls.Load()).To(Equal(int32(3)))
	})

	It("gives up after the configured retries", func() {
		asr := serve(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, "down", http.StatusServiceUnavailable)
		})

		_, err := asr.Transcribe(context.Background(), audio)
		Expect(err).To(MatchError(ContainSubstring("retries exhausted")))
		Expect(calls.Load()).To(Equal(int32(3)))
	})

	It("does not retry client errors", func() {
		asr := serve(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, "unsupported media", http.StatusUnsupportedMediaType)
		})

		_, err := asr.Transcribe(context.Background(), audio)
		Expect(err).To(MatchError(ContainSubstring("unsupported media")))
		Expect(calls.Load()).To(Equal(int32(1)))
	})

	It("rejects an undecodable body", func() {
		asr := serve(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		})
		_, err := asr.Transcribe(context.Background(), audio)
		Expect(err).To(MatchError(ContainSubstring("decode")))
	})

	It("fails on a missing file without calling the service", func() {
		asr := serve(func(w http.ResponseWriter, r *http.Request) { calls.Add(1) })
		_, err := asr.Transcribe(context.Background(), filepath.Join(GinkgoT().TempDir(), "nope.wav"))
		Expect(err).To(HaveOccurred())
		Expect(calls.Load()).To(Equal(int32(0)))
	})
})
