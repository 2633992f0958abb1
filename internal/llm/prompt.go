package llm

import (
	"encoding/json"
	"strings"

	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/constants"
)

// BuildPrompt composes the receipt-understanding instruction: the strict JSON
// schema the model must follow plus the cleanup rules (fix OCR misspellings,
// strip quantities, keep amount lines out of items, dedupe, keep the totals
// arithmetic consistent).
func BuildPrompt(ocrText string) string {
	var b strings.Builder

	b.WriteString("You are a receipt understanding AI.\n\n")
	b.WriteString("TASK:\nConvert OCR text into structured JSON.\n\n")
	b.WriteString("STRICT RULES:\n")
	b.WriteString("- Output ONLY valid JSON\n")
	b.WriteString("- No explanations\n")
	b.WriteString("- No markdown\n")
	b.WriteString("- No extra text\n\n")

	b.WriteString("SCHEMA:\n")
	b.WriteString(mustJSON(map[string]any{
		"store":    "string",
		"date":     "string or N/A",
		"time":     "string or N/A",
		"payment":  strings.Join(constants.PaymentMethods, "/"),
		"subtotal": 0,
		"tax":      0,
		"total":    0,
		"items":    []map[string]any{{"name": "string", "price": 0}},
	}))
	b.WriteString("\n\n")

	b.WriteString("IMPORTANT RULES:\n")
	b.WriteString("- Fix OCR errors in item names (PhoGa -> Pho Ga)\n")
	b.WriteString("- Remove quantities from names\n")
	b.WriteString("- DO NOT include subtotal/tax/total/service as items\n")
	b.WriteString("- Remove duplicate items\n")
	b.WriteString("- If subtotal missing, compute from items\n")
	b.WriteString("- Total must be >= subtotal + tax\n")
	b.WriteString("- If date/time unclear, return \"N/A\"\n\n")

	b.WriteString("OCR TEXT:\n\"\"\"\n")
	b.WriteString(ocrText)
	b.WriteString("\n\"\"\"\n")
	return b.String()
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
