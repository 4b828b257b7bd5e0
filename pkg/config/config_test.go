package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/clipperhq/clipper/pkg/config"
)

var _ = Describe("Configer", func() {
	var (
		tmpDir string
		cfger  *config.Configer
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()

		var err error
		cfger, err = config.NewConfiger(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("LoadConfig", func() {
		It("returns defaults when no config file exists", func() {
			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())

			Expect(cfg.Chunking.Size).To(Equal(1000))
			Expect(cfg.Chunking.Overlap).To(Equal(200))
			Expect(cfg.Retrieval.TopK).To(Equal(5))
			Expect(cfg.Retrieval.Parallelism).To(Equal(4))
			Expect(cfg.Embedding.Provider).To(Equal("ollama"))
			Expect(cfg.LLM.Provider).To(Equal("ollama"))
			Expect(cfg.VectorStore.Provider).To(Equal("memory"))
			Expect(cfg.API.Listen).To(Equal(":8080"))
		})

		It("fills unset fields from defaults", func() {
			content := "[llm]\nmodel = \"mistral\"\n"
			Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0o600)).To(Succeed())

			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())

			Expect(cfg.LLM.Model).To(Equal("mistral"))
			Expect(cfg.LLM.Provider).To(Equal("ollama"))
			Expect(cfg.Chunking.Size).To(Equal(1000))
		})
	})

	Describe("SaveConfig", func() {
		It("round-trips a config through TOML", func() {
			cfg := config.NewDefaultConfig()
			cfg.Chunking.Size = 512
			cfg.LLM.Model = "qwen2.5"

			Expect(cfger.SaveConfig(cfg)).To(Succeed())

			loaded, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Chunking.Size).To(Equal(512))
			Expect(loaded.LLM.Model).To(Equal("qwen2.5"))
		})

		It("refuses to save nil config", func() {
			Expect(cfger.SaveConfig(nil)).To(HaveOccurred())
		})
	})

	Describe("SetConfigValue and GetConfigValue", func() {
		It("sets and gets string keys", func() {
			Expect(cfger.SetConfigValue("llm.model", "mistral")).To(Succeed())

			got, err := cfger.GetConfigValue("llm.model")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal("mistral"))
		})

		It("sets and gets integer keys", func() {
			Expect(cfger.SetConfigValue("retrieval.top_k", "8")).To(Succeed())

			got, err := cfger.GetConfigValue("retrieval.top_k")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal("8"))
		})

		It("rejects non-integer values for integer keys", func() {
			Expect(cfger.SetConfigValue("chunking.size", "lots")).To(HaveOccurred())
		})

		It("rejects unknown keys", func() {
			Expect(cfger.SetConfigValue("nope.nothing", "x")).To(HaveOccurred())

			_, err := cfger.GetConfigValue("nope.nothing")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ParseConfigTOML", func() {
		It("rejects unsupported versions", func() {
			_, err := config.ParseConfigTOML([]byte("version = 99\n"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ValidConfigKeys", func() {
		It("covers every key and starts with the fetch section", func() {
			keys := config.ValidConfigKeys()
			Expect(keys).To(ContainElements(
				"chunking.size", "retrieval.top_k", "llm.provider", "api.listen",
			))
			Expect(keys[0]).To(Equal("fetch.timeout_seconds"))
		})
	})

	Describe("PresetConfig", func() {
		It("returns ollama defaults", func() {
			cfg, err := config.PresetConfig("ollama")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.LLM.Provider).To(Equal("ollama"))
		})

		It("configures both providers for openai", func() {
			cfg, err := config.PresetConfig("openai")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.LLM.Provider).To(Equal("openai"))
			Expect(cfg.Embedding.Provider).To(Equal("openai"))
			Expect(cfg.Embedding.Dimensions).To(Equal(uint(1536)))
		})

		It("rejects unknown presets", func() {
			_, err := config.PresetConfig("hal9000")
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("InitViper", func() {
	It("applies defaults, file values, and env precedence", func() {
		tmpDir := GinkgoT().TempDir()
		content := "[retrieval]\ntop_k = 7\n"
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0o600)).To(Succeed())

		GinkgoT().Setenv("CLIPPER_LLM_MODEL", "from-env")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		// default
		Expect(v.GetInt("chunking.size")).To(Equal(1000))
		// file
		Expect(v.GetInt("retrieval.top_k")).To(Equal(7))
		// env
		Expect(v.GetString("llm.model")).To(Equal("from-env"))
	})
})
