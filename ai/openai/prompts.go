// Copyright 2026 Veridian Systems
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


package openai

import (
	"fmt"
	"strings"
)

// answerPromptTemplate instructs the model to answer strictly from the
// provided context. The wording is kept minimal because small local models
// tend to follow short instructions more reliably than elaborate ones.
const answerPromptTemplate = `Answer the following question using the context below:

Question: %s

Context: %s

Your answer:`

// buildAnswerPrompt assembles the full generation prompt from a question and
// the retrieved context passages. Passages are separated by blank lines so
// the model sees distinct excerpts rather than one run-on paragraph.
func buildAnswerPrompt(question string, passages []string) string {
	context := strings.Join(passages, "\n\n")
	return fmt.Sprintf(answerPromptTemplate, question, context)
}
