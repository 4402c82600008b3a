package server_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/maastricht-university/meeting-clarity/clarity"
	"github.com/maastricht-university/meeting-clarity/meeting"
	"github.com/maastricht-university/meeting-clarity/server"
)

const goodReport = `{"total_jargon_count":5,"identified_jargon":[{"term":"synergy","speaker":"A","frequency":5,"penalty_weight":1.0,"clarity_critique":"Say working together."}],"overall_clarity_summary":"Heavy on buzzwords."}`

func multipartBody(fields map[string]string, file string, content []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		Expect(w.WriteField(k, v)).To(Succeed())
	}
	if file != "" {
		fw, err := w.CreateFormFile("file", file)
		Expect(err).NotTo(HaveOccurred())
		_, err = fw.Write(content)
		Expect(err).NotTo(HaveOccurred())
	}
	Expect(w.Close()).To(Succeed())
	return body, w.FormDataContentType()
}

func decode[T any](rec *httptest.ResponseRecorder) T {
	var out T
	ExpectWithOffset(1, json.Unmarshal(rec.Body.Bytes(), &out)).To(Succeed())
	return out
}

var _ = Describe("Handler", func() {
	var (
		router    *gin.Engine
		analyzer  *fakeAnalyzer
		meetings  *fakeMeetings
		uploadDir string
	)

	BeforeEach(func() {
		uploadDir = GinkgoT().TempDir()
		analyzer = &fakeAnalyzer{}
		meetings = &fakeMeetings{
			byID: map[string]*meeting.Analysis{
				"m-7": {ID: "m-7", Owner: "alice", ClarityIndex: 64},
			},
			history: map[string][]meeting.Summary{
				"alice": {{ID: "m-7", ClarityIndex: 64}, {ID: "m-9", ClarityIndex: 80}},
			},
		}
		h := server.NewHandler(analyzer, scorer{}, meetings, uploadDir)
		router = server.NewRouter(h, nil, server.RouterConfig{})
	})

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	Describe("GET /health", func() {
		It("reports ok", func() {
			rec := serve(httptest.NewRequest(http.MethodGet, "/health", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(decode[map[string]string](rec)).To(HaveKeyWithValue("status", "ok"))
		})
	})

	Describe("GET /metrics", func() {
		It("is absent unless a handler is configured", func() {
			rec := serve(httptest.NewRequest(http.MethodGet, "/metrics", nil))
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("serves the configured handler", func() {
			metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("clarity_analyses_total 1\n"))
			})
			h := server.NewHandler(analyzer, scorer{}, meetings, uploadDir)
			router = server.NewRouter(h, nil, server.RouterConfig{Metrics: metrics})
			rec := serve(httptest.NewRequest(http.MethodGet, "/metrics", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("clarity_analyses_total"))
		})
	})

	Describe("POST /api/analyze", func() {
		It("runs the pipeline on the uploaded file and cleans up", func() {
			body, ct := multipartBody(map[string]string{"owner": "alice"}, "standup.wav", []byte("RIFF"))
			req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
			req.Header.Set("Content-Type", ct)

			rec := serve(req)
			Expect(rec.Code).To(Equal(http.StatusOK))
			a := decode[meeting.Analysis](rec)
			Expect(a.ID).To(Equal("m-1"))
			Expect(a.Owner).To(Equal("alice"))
			Expect(a.Label).To(Equal("standup.wav"))

			Expect(analyzer.uploaded).To(Equal([]byte("RIFF")))
			Expect(analyzer.req.MediaPath).To(HaveSuffix(".wav"))
			_, err := os.Stat(analyzer.req.MediaPath)
			Expect(os.IsNotExist(err)).To(BeTrue())
		})

		It("rejects uploads larger than the configured limit", func() {
			h := server.NewHandler(analyzer, scorer{}, meetings, uploadDir)
			router = server.NewRouter(h, nil, server.RouterConfig{MaxUploadBytes: 1024})
			body, ct := multipartBody(map[string]string{"owner": "alice"}, "big.wav", bytes.Repeat([]byte("x"), 4096))
			req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
			req.Header.Set("Content-Type", ct)

			rec := serve(req)
			Expect(rec.Code).To(Equal(http.StatusRequestEntityTooLarge))
			Expect(decode[map[string]string](rec)).To(HaveKeyWithValue("field", "file"))
			Expect(analyzer.uploaded).To(BeNil())
			entries, err := os.ReadDir(uploadDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})

		It("accepts uploads within the limit", func() {
			h := server.NewHandler(analyzer, scorer{}, meetings, uploadDir)
			router = server.NewRouter(h, nil, server.RouterConfig{MaxUploadBytes: 1 << 20})
			body, ct := multipartBody(map[string]string{"owner": "alice"}, "small.wav", []byte("RIFF"))
			req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
			req.Header.Set("Content-Type", ct)
			Expect(serve(req).Code).To(Equal(http.StatusOK))
			Expect(analyzer.uploaded).To(Equal([]byte("RIFF")))
		})

		It("uses the supplied label", func() {
			body, ct := multipartBody(map[string]string{"owner": "alice", "label": "Weekly sync"}, "a.mp3", []byte("x"))
			req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
			req.Header.Set("Content-Type", ct)
			Expect(serve(req).Code).To(Equal(http.StatusOK))
			Expect(analyzer.req.Label).To(Equal("Weekly sync"))
		})

		It("requires an owner", func() {
			body, ct := multipartBody(nil, "a.wav", []byte("x"))
			req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
			req.Header.Set("Content-Type", ct)
			rec := serve(req)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(decode[map[string]string](rec)).To(HaveKeyWithValue("field", "owner"))
		})

		It("requires a file", func() {
			body, ct := multipartBody(map[string]string{"owner": "alice"}, "", nil)
			req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
			req.Header.Set("Content-Type", ct)
			rec := serve(req)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(decode[map[string]string](rec)).To(HaveKeyWithValue("field", "file"))
		})

		It("maps a malformed extractor report to 502", func() {
			analyzer.err = &clarity.MalformedReportError{Field: "identified_jargon", Reason: "missing"}
			body, ct := multipartBody(map[string]string{"owner": "alice"}, "a.wav", []byte("x"))
			req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
			req.Header.Set("Content-Type", ct)
			rec := serve(req)
			Expect(rec.Code).To(Equal(http.StatusBadGateway))
			Expect(decode[map[string]string](rec)).To(HaveKeyWithValue("field", "identified_jargon"))
		})

		It("maps other failures to 500", func() {
			analyzer.err = errors.New("asr down")
			body, ct := multipartBody(map[string]string{"owner": "alice"}, "a.wav", []byte("x"))
			req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
			req.Header.Set("Content-Type", ct)
			rec := serve(req)
			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(rec.Body.String()).To(ContainSubstring("asr down"))
		})
	})

	Describe("POST /api/score", func() {
		post := func(body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/api/score", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			return serve(req)
		}

		It("scores a report object", func() {
			rec := post(`{"report":` + goodReport + `,"total_words":100}`)
			Expect(rec.Code).To(Equal(http.StatusOK))
			res := decode[server.ScoreResponse](rec)
			Expect(res.ClarityIndex).To(Equal(75))
			Expect(res.SpeakerScores).To(Equal([]meeting.SpeakerScore{{Speaker: "A", Score: 5}}))
			Expect(res.TopJargonTerms).To(HaveLen(1))
			Expect(res.TotalJargonCount).To(Equal(5))
			Expect(res.OverallSummary).To(Equal("Heavy on buzzwords."))
		})

		It("accepts the report as a JSON string", func() {
			quoted, err := json.Marshal(goodReport)
			Expect(err).NotTo(HaveOccurred())
			rec := post(`{"report":` + string(quoted) + `,"total_words":"100"}`)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(decode[server.ScoreResponse](rec).ClarityIndex).To(Equal(75))
		})

		It("scores a silent meeting as fully clear", func() {
			rec := post(`{"report":{"total_jargon_count":0,"identified_jargon":[],"overall_clarity_summary":""},"total_words":0}`)
			Expect(rec.Code).To(Equal(http.StatusOK))
			res := decode[server.ScoreResponse](rec)
			Expect(res.ClarityIndex).To(Equal(100))
			Expect(res.SpeakerScores).To(BeEmpty())
		})

		It("rejects a malformed report with the offending field", func() {
			rec := post(`{"report":{"total_jargon_count":0,"overall_clarity_summary":""},"total_words":10}`)
			Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
			Expect(decode[map[string]string](rec)).To(HaveKeyWithValue("field", "identified_jargon"))
		})

		It("rejects a negative word count", func() {
			rec := post(`{"report":` + goodReport + `,"total_words":-3}`)
			Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
			Expect(decode[map[string]string](rec)).To(HaveKeyWithValue("field", "total_words"))
		})

		It("requires a report", func() {
			rec := post(`{"total_words":3}`)
			Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
			Expect(decode[map[string]string](rec)).To(HaveKeyWithValue("field", "report"))
		})

		It("rejects a body that is not JSON", func() {
			Expect(post(`not json`).Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /api/history/:owner", func() {
		It("lists the owner's meetings", func() {
			rec := serve(httptest.NewRequest(http.MethodGet, "/api/history/alice", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			list := decode[[]meeting.Summary](rec)
			Expect(list).To(HaveLen(2))
			Expect(list[0].ID).To(Equal("m-7"))
		})

		It("returns an empty list for an unknown owner", func() {
			rec := serve(httptest.NewRequest(http.MethodGet, "/api/history/bob", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(strings.TrimSpace(rec.Body.String())).To(Equal("[]"))
		})
	})

	Describe("GET /api/meetings/:id", func() {
		It("returns the stored analysis", func() {
			rec := serve(httptest.NewRequest(http.MethodGet, "/api/meetings/m-7", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(decode[meeting.Analysis](rec).ClarityIndex).To(Equal(64))
		})

		It("returns 404 for an unknown id", func() {
			rec := serve(httptest.NewRequest(http.MethodGet, "/api/meetings/nope", nil))
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})
})
