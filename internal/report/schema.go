package report

// Schema is the JSON Schema (Draft 2020-12) for a product score report.
// It documents the structure returned by WriteJSON and by the scoring
// endpoints of the HTTP API.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://github.com/realfoodscore/backend/score-report.schema.json",
  "title": "Real Food Score Report",
  "description": "Output schema for realfood score --format=json and POST /api/v1/score",
  "type": "object",
  "required": ["product", "ingredientCount", "scores", "classification", "flags", "recommendations"],
  "properties": {
    "product": { "type": "string" },
    "ingredientCount": { "type": "integer", "minimum": 0 },
    "scores": {
      "type": "object",
      "required": ["rfk", "guideline", "practical"],
      "properties": {
        "rfk": { "$ref": "#/$defs/TierScore" },
        "guideline": { "$ref": "#/$defs/TierScore" },
        "practical": { "$ref": "#/$defs/TierScore" }
      }
    },
    "classification": { "$ref": "#/$defs/Classification" },
    "flags": {
      "type": "array",
      "items": { "type": "string" },
      "description": "One line per flagged category present"
    },
    "recommendations": {
      "type": "array",
      "items": { "type": "string" }
    }
  },
  "$defs": {
    "Score": {
      "type": "number",
      "minimum": 0,
      "maximum": 100
    },
    "Category": {
      "type": "string",
      "enum": [
        "added_sugar", "industrial_oil", "preservative",
        "artificial_color", "artificial_sweetener", "emulsifier",
        "whole_food"
      ]
    },
    "TierScore": {
      "type": "object",
      "required": ["tier", "title", "description", "score", "grade", "label", "breakdown"],
      "properties": {
        "tier": {
          "type": "string",
          "enum": ["rfk", "guideline", "practical"]
        },
        "title": { "type": "string" },
        "description": { "type": "string" },
        "score": {
          "$ref": "#/$defs/Score",
          "description": "Bounded score rounded to one decimal, higher is better"
        },
        "grade": {
          "type": "string",
          "enum": ["A", "B", "C", "D", "F"]
        },
        "label": {
          "type": "string",
          "enum": ["Excellent", "Good", "Fair", "Poor"]
        },
        "breakdown": {
          "type": "object",
          "required": ["countScore", "flaggedScore", "wholeFoodScore"],
          "properties": {
            "countScore": { "$ref": "#/$defs/Score" },
            "flaggedScore": { "$ref": "#/$defs/Score" },
            "wholeFoodScore": { "$ref": "#/$defs/Score" }
          }
        }
      }
    },
    "Classification": {
      "type": "object",
      "required": ["ingredients", "totalCount", "categoryCounts", "unclassifiedCount", "wholeFoodRatio"],
      "properties": {
        "ingredients": {
          "type": "array",
          "items": { "$ref": "#/$defs/ClassifiedIngredient" }
        },
        "totalCount": { "type": "integer", "minimum": 0 },
        "categoryCounts": {
          "type": "object",
          "propertyNames": { "$ref": "#/$defs/Category" },
          "additionalProperties": { "type": "integer", "minimum": 0 }
        },
        "unclassifiedCount": { "type": "integer", "minimum": 0 },
        "wholeFoodRatio": {
          "type": "number",
          "minimum": 0,
          "maximum": 1
        }
      }
    },
    "ClassifiedIngredient": {
      "type": "object",
      "required": ["raw", "normalized", "categories", "match"],
      "properties": {
        "raw": {
          "type": "string",
          "description": "Trimmed source text of the ingredient"
        },
        "normalized": {
          "type": "string",
          "description": "Lower-cased, diacritic-folded form used for matching"
        },
        "categories": {
          "type": "array",
          "items": { "$ref": "#/$defs/Category" }
        },
        "match": {
          "type": "string",
          "enum": ["exact", "contains", "contained", "none"]
        }
      }
    }
  }
}`
