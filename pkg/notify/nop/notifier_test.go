package nop_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/clipperhq/clipper/pkg/notify"
	"github.com/clipperhq/clipper/pkg/notify/nop"
)

var _ = Describe("Notifier", func() {
	It("creates a non-nil notifier", func() {
		n := nop.NewNotifier()
		Expect(n).NotTo(BeNil())
	})

	It("returns ErrNilSummary for nil summaries", func() {
		n := nop.NewNotifier()
		err := n.IngestComplete(context.Background(), nil)
		Expect(err).To(MatchError(notify.ErrNilSummary))
	})

	It("succeeds for non-nil summaries", func() {
		n := nop.NewNotifier()
		err := n.IngestComplete(context.Background(), &notify.IngestSummary{})
		Expect(err).NotTo(HaveOccurred())
	})

	It("accepts tokens and completions", func() {
		n := nop.NewNotifier()
		Expect(n.AnswerToken(context.Background(), "hi")).To(Succeed())
		Expect(n.AnswerComplete(context.Background(), []string{"https://example.com"})).To(Succeed())
	})

	It("closes successfully", func() {
		n := nop.NewNotifier()
		Expect(n.Close()).To(Succeed())
	})
})
