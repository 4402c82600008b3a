package clients_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/maastricht-university/meeting-clarity/clients"
)

var _ = Describe("NewCompleter", func() {
	It("requires a provider", func() {
		_, err := clients.NewCompleter(clients.LLMConfig{Model: "x"})
		Expect(err).To(MatchError(ContainSubstring("provider must not be empty")))
	})

	It("requires an API key for openai", func() {
		_, err := clients.NewCompleter(clients.LLMConfig{Provider: "openai"})
		Expect(err).To(MatchError(ContainSubstring("API key")))
	})

	It("defaults the openai model", func() {
		c, err := clients.NewCompleter(clients.LLMConfig{Provider: "OpenAI", APIKey: "sk-test"})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Name()).To(Equal("openai/gpt-4o-mini"))
	})

	It("builds a local ollama backend", func() {
		c, err := clients.NewCompleter(clients.LLMConfig{Provider: "ollama", Model: "llama3", BaseURL: "http://127.0.0.1:11434"})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Name()).To(Equal("ollama/llama3"))
	})

	It("requires a model for any-llm backends", func() {
		_, err := clients.NewCompleter(clients.LLMConfig{Provider: "gemini"})
		Expect(err).To(MatchError(ContainSubstring("model must not be empty")))
	})

	It("knows its providers regardless of case", func() {
		Expect(clients.KnownProvider("Gemini")).To(BeTrue())
		Expect(clients.KnownProvider("openai-compat")).To(BeTrue())
		Expect(clients.KnownProvider("fakecloud")).To(BeFalse())
	})

	It("rejects unknown providers", func() {
		_, err := clients.NewCompleter(clients.LLMConfig{Provider: "fakecloud", Model: "m"})
		Expect(err).To(MatchError(ContainSubstring("unsupported provider")))
	})
})
