package validators

import "go.mongodb.org/mongo-driver/bson"

var ReminderValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"booking_id", "user_id", "channel", "message", "due_at", "status", "attempts"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "objectId"},
			"booking_id": bson.M{"bsonType": "string"},
			"user_id":    bson.M{"bsonType": "string"},
			"channel":    bson.M{"bsonType": "string", "enum": []string{"line", "telegram"}},
			"message":    bson.M{"bsonType": "string", "minLength": 1},
			"due_at":     bson.M{"bsonType": "date"},
			"status":     bson.M{"bsonType": "string", "enum": []string{"scheduled", "sending", "sent", "failed"}},
			"attempts":   bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
			"sent_at":    bson.M{"bsonType": "date"},
		},
	},
}
