package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/clipperhq/clipper/pkg/dotdir"
)

var _ = Describe("Manager", func() {
	var (
		m      *dotdir.Manager
		tmpDir string
	)

	BeforeEach(func() {
		m = dotdir.NewManager()
		tmpDir = GinkgoT().TempDir()
	})

	Describe("Target", func() {
		It("uses the override directory when provided", func() {
			override := filepath.Join(tmpDir, "custom")

			target, err := m.Target(override)
			Expect(err).NotTo(HaveOccurred())
			Expect(target).To(Equal(override))
		})

		It("creates the directory if it does not exist", func() {
			override := filepath.Join(tmpDir, "fresh")

			_, err := m.Target(override)
			Expect(err).NotTo(HaveOccurred())

			info, err := os.Stat(override)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("returns an absolute path", func() {
			target, err := m.Target(filepath.Join(tmpDir, "abs"))
			Expect(err).NotTo(HaveOccurred())
			Expect(filepath.IsAbs(target)).To(BeTrue())
		})
	})
})
