package askcmder

import (
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NewAskCmd", func() {
	It("creates the ask command", func() {
		cmd := NewAskCmd()
		Expect(cmd.Use).To(Equal("ask <question>"))
	})

	It("registers the api-target flag from the shared registry", func() {
		cmd := NewAskCmd()
		flag := cmd.Flags().Lookup("api-target")
		Expect(flag).NotTo(BeNil())
		Expect(flag.Shorthand).To(Equal("a"))
	})

	It("requires exactly one question argument", func() {
		cmd := NewAskCmd()
		Expect(cmd.Args(cmd, []string{})).To(HaveOccurred())
		Expect(cmd.Args(cmd, []string{"one", "two"})).To(HaveOccurred())
		Expect(cmd.Args(cmd, []string{"what happened?"})).To(Succeed())
	})
})

var _ = Describe("streamAnswer", func() {
	It("writes tokens in order and returns the sources", func() {
		stream := strings.Join([]string{
			`event: token`, `data: {"text":"Alpha"}`, ``,
			`event: token`, `data: {"text":" is first."}`, ``,
			`event: sources`, `data: {"sources":["https://a.com/one"]}`, ``,
			`event: done`, `data: {}`, ``,
		}, "\n")

		var out strings.Builder
		sources, err := streamAnswer(&out, strings.NewReader(stream))

		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(Equal("Alpha is first."))
		Expect(sources).To(Equal([]string{"https://a.com/one"}))
	})

	It("surfaces an error event as an error", func() {
		stream := strings.Join([]string{
			`event: token`, `data: {"text":"Alp"}`, ``,
			`event: error`, `data: {"error":"generation failed"}`, ``,
		}, "\n")

		var out strings.Builder
		_, err := streamAnswer(&out, strings.NewReader(stream))

		Expect(err).To(MatchError(ContainSubstring("generation failed")))
		Expect(out.String()).To(Equal("Alp"))
	})

	It("returns what it has when the stream ends without a done event", func() {
		stream := strings.Join([]string{
			`event: token`, `data: {"text":"Alpha"}`, ``,
			`event: sources`, `data: {"sources":["https://a.com/one"]}`, ``,
		}, "\n")

		var out strings.Builder
		sources, err := streamAnswer(&out, strings.NewReader(stream))

		Expect(err).NotTo(HaveOccurred())
		Expect(sources).To(Equal([]string{"https://a.com/one"}))
	})

	It("rejects malformed token payloads", func() {
		stream := "event: token\ndata: not json\n\n"

		var out strings.Builder
		_, err := streamAnswer(&out, strings.NewReader(stream))

		Expect(err).To(MatchError(ContainSubstring("decoding token event")))
	})
})

var _ = Describe("serverError", func() {
	It("prefers the server's error message", func() {
		rec := httptest.NewRecorder()
		rec.WriteHeader(http.StatusConflict)
		rec.WriteString(`{"error":"no knowledge base has been built yet"}`)

		err := serverError(rec.Result())
		Expect(err).To(MatchError(ContainSubstring("409")))
		Expect(err).To(MatchError(ContainSubstring("no knowledge base")))
	})

	It("falls back to the status code for opaque bodies", func() {
		rec := httptest.NewRecorder()
		rec.WriteHeader(http.StatusBadGateway)
		rec.WriteString("upstream exploded")

		err := serverError(rec.Result())
		Expect(err).To(MatchError(ContainSubstring("server returned 502")))
	})
})
