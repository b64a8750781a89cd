// Package all registers every gateway backend.
package all

import (
	_ "devisflow/internal/gateway/anthropic"    // anthropic
	_ "devisflow/internal/gateway/local"        // local stub
	_ "devisflow/internal/gateway/ollama"       // ollama
	_ "devisflow/internal/gateway/openai"       // openai
	_ "devisflow/internal/gateway/openaicompat" // openrouter, mistral
)
