package emr

import (
	"fmt"
	"strings"
)

const recordPromptTemplate = `Analyze the following transcribed medical text. Extract the key Electronic Medical Record (EMR) data points.
Return the extracted information strictly as KEY: VALUE pairs, one pair per line.
Do not include any introductory sentences, explanations, or extraneous text like "Extracted EMR Data:".

Extract these specific fields:
%s

If a specific field is not mentioned in the text, return the key with the value %q.
Do not infer or make up information. Only extract explicitly stated details.

Source Text:
---
%s
---`

const suggestionsPromptTemplate = `Based on the following summarized Electronic Medical Record (EMR) data, provide concise potential medical suggestions.
Return the suggestions strictly as KEY: VALUE pairs, one pair per line.
Do not include any introductory sentences, explanations, or extraneous text like "Medical Suggestions:".

Provide suggestions for these categories if relevant based on the input:
%s

EMR Data Summary:
---
%s
---`

const translationPromptTemplate = `Translate the following Malayalam medical text to English accurately and completely.
Do not summarize or omit any details. Preserve medical terminology.
Maintain the original context and meaning. If the input text is already substantially in English, return it as is with minimal changes.

Input Text:
---
%s
---

English Translation:`

func recordPrompt(text string) string {
	return fmt.Sprintf(recordPromptTemplate, fieldList(RecordFields), RecordFields.Sentinel, text)
}

func suggestionsPrompt(summary string) string {
	return fmt.Sprintf(suggestionsPromptTemplate, fieldList(SuggestionFields), summary)
}

func translationPrompt(text string) string {
	return fmt.Sprintf(translationPromptTemplate, text)
}

// fieldList renders the closed field list the way the prompts present it,
// one "- Key:" line per field.
func fieldList(fields FieldSet) string {
	lines := make([]string, len(fields.Keys))
	for i, k := range fields.Keys {
		lines[i] = "- " + k + ":"
	}
	return strings.Join(lines, "\n")
}

// summarize renders the informative record entries as "- key: value" lines
// in field order. Placeholder values are left out of the prompt.
func summarize(rec Record) string {
	var lines []string
	for _, k := range RecordFields.Keys {
		v, ok := rec[k]
		if !ok || !informative(v) {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", k, v))
	}
	return strings.Join(lines, "\n")
}
