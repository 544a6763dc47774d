package recommendation

// activityListSchema is the JSON schema the sanitized activity list must
// satisfy. Title and description are the only hard requirements; everything
// else is optional and gets a default during coercion.
const activityListSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["title", "description"],
    "properties": {
      "title": {"type": "string", "minLength": 1},
      "description": {"type": "string", "minLength": 1},
      "category": {"type": "string"},
      "suitable_ages": {"type": "string"},
      "duration_hours": {"type": "number"},
      "address": {"type": "string"},
      "latitude": {"type": "number", "minimum": -90, "maximum": 90},
      "longitude": {"type": "number", "minimum": -180, "maximum": 180},
      "booking_url": {"type": "string"},
      "free": {"type": "boolean"},
      "weather_fit": {"type": "string"},
      "notes": {"type": "string"},
      "evidence": {"type": "array", "items": {"type": "string"}}
    }
  }
}`
