package extract

// BuildPrompt is the instruction sent alongside the image.
func BuildPrompt() string {
	return `
Analyze this image and extract food items with the following information:
1. Item name
2. Quantity/amount
3. Expiry date (if visible)

IMPORTANT DATE FORMAT INSTRUCTIONS:
- If you see dates in DD/MM/YYYY format (like 03/09/25), convert to YYYY-MM-DD
- If you see dates in MM/DD/YYYY format, convert to YYYY-MM-DD
- If you see dates in DD-MM-YYYY format, convert to YYYY-MM-DD
- Always assume 2-digit years 00-29 are 2000-2029, 30-99 are 1930-1999
- Look for keywords like "USE BY", "EXPIRES", "BEST BEFORE", "EXP DATE"

Return the data in JSON format as an array of objects with these EXACT fields:
- item_name: string (the name of the food item)
- quantity: string (amount/quantity of the item)
- expiry_date: string (format: YYYY-MM-DD, or "unknown" if not visible)
- context: string (the label text printed next to the date, if any)

If no expiry date is visible, leave expiry_date out.
Output MUST contain ONLY JSON. NO explanations. NO markdown.

Example response:
[
  {
    "item_name": "Milk",
    "quantity": "1 liter",
    "expiry_date": "2025-09-03",
    "context": "USE BY"
  }
]`
}
