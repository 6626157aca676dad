// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package openai provides AI service implementations using OpenAI-compatible APIs.
//
// This package implements the ai.AIProvider interface using the langchaingo
// library to communicate with OpenAI or OpenAI-compatible services (such as
// Groq, Ollama, LocalAI, or vLLM).
//
// The query translator prompts the model with the filter grammar and applies
// a bounded recovery policy to its output: one formatting retry when the
// response is not parseable JSON, then one schema-aware repair pass when it
// parses but fails validation. Anything still unusable after that surfaces
// as *core.TranslationError; the translator never substitutes a guessed
// filter for ambiguous model output.
//
// # Usage
//
//	cfg := ai.NewConfig(
//	    ai.WithTranslatorHost("https://api.groq.com/openai"),
//	    ai.WithAPIToken(os.Getenv("GROQ_API_KEY")),
//	)
//
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	filter, err := provider.Translator().Translate(ctx, "people with savings and property over 200000")
//	vector, err := provider.Embedder().EmbedText(ctx, "people with savings and property over 200000")
package openai
