package fetch_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/clipperhq/clipper/pkg/fetch"
)

var _ = Describe("HTTPFetcher", func() {
	var (
		server  *httptest.Server
		fetcher *fetch.HTTPFetcher
		ctx     context.Context

		status      int
		contentType string
		body        string
	)

	BeforeEach(func() {
		ctx = context.Background()
		status = http.StatusOK
		contentType = "text/html; charset=utf-8"
		body = ""

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", contentType)
			w.WriteHeader(status)
			io.WriteString(w, body)
		}))

		fetcher = fetch.NewHTTPFetcher(fetch.HTTPConfig{})
	})

	AfterEach(func() {
		server.Close()
		Expect(fetcher.Close()).To(Succeed())
	})

	Describe("Fetch", func() {
		It("records the source URL on the document", func() {
			body = "<html><body><p>hello</p></body></html>"

			doc, err := fetcher.Fetch(ctx, server.URL)
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.SourceURL).To(Equal(server.URL))
		})

		It("strips markup down to readable text", func() {
			body = `<html>
				<head><title>Ignored</title><style>p { color: red }</style></head>
				<body>
					<script>alert("nope")</script>
					<h1>Heading</h1>
					<p>First paragraph with <b>bold</b> text.</p>
					<p>Second paragraph.</p>
				</body>
			</html>`

			doc, err := fetcher.Fetch(ctx, server.URL)
			Expect(err).NotTo(HaveOccurred())

			Expect(doc.Text).To(ContainSubstring("Heading"))
			Expect(doc.Text).To(ContainSubstring("First paragraph with bold text."))
			Expect(doc.Text).To(ContainSubstring("Second paragraph."))
			Expect(doc.Text).NotTo(ContainSubstring("<"))
			Expect(doc.Text).NotTo(ContainSubstring("alert"))
			Expect(doc.Text).NotTo(ContainSubstring("color: red"))
			Expect(doc.Text).NotTo(ContainSubstring("Ignored"))
		})

		It("keeps paragraph breaks as blank lines", func() {
			body = "<body><p>one</p><p>two</p></body>"

			doc, err := fetcher.Fetch(ctx, server.URL)
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Text).To(Equal("one\n\ntwo"))
		})

		It("decodes HTML entities", func() {
			body = "<p>fish &amp; chips &mdash; &quot;classic&quot;</p>"

			doc, err := fetcher.Fetch(ctx, server.URL)
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Text).To(ContainSubstring(`fish & chips`))
			Expect(doc.Text).To(ContainSubstring(`"classic"`))
		})

		It("passes plain text through untouched apart from trimming", func() {
			contentType = "text/plain"
			body = "  just some text\n"

			doc, err := fetcher.Fetch(ctx, server.URL)
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Text).To(Equal("just some text"))
		})

		It("detects HTML by sniffing when the content type lies", func() {
			contentType = "text/plain"
			body = "<!DOCTYPE html><html><body><p>sneaky</p></body></html>"

			doc, err := fetcher.Fetch(ctx, server.URL)
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Text).To(Equal("sneaky"))
		})

		Context("when the server returns a non-2xx status", func() {
			BeforeEach(func() {
				status = http.StatusNotFound
			})

			It("returns an error naming the URL", func() {
				_, err := fetcher.Fetch(ctx, server.URL)
				Expect(err).To(HaveOccurred())

				var fetchErr *fetch.Error
				Expect(err).To(BeAssignableToTypeOf(fetchErr))
				Expect(err.Error()).To(ContainSubstring(server.URL))
				Expect(err.Error()).To(ContainSubstring("404"))
			})
		})

		Context("when the server is unreachable", func() {
			It("returns an error naming the URL", func() {
				url := server.URL
				server.Close()

				_, err := fetcher.Fetch(ctx, url)
				Expect(err).To(HaveOccurred())

				var fetchErr *fetch.Error
				Expect(err).To(BeAssignableToTypeOf(fetchErr))
				Expect(err.Error()).To(ContainSubstring(url))
			})
		})
	})
})
