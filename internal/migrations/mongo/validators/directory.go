package validators

import "go.mongodb.org/mongo-driver/bson"

var ServiceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "price", "active"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":           bson.M{"bsonType": "objectId"},
			"name":          bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
			"price":         bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
			"active":        bson.M{"bsonType": "bool"},
			"display_order": bson.M{"bsonType": []string{"int", "long"}},
		},
	},
}

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":      bson.M{"bsonType": "string", "minLength": 1},
			"phone":    bson.M{"bsonType": "string"},
			"birthday": bson.M{"bsonType": "string"},
		},
	},
}

var CustomerValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":          bson.M{"bsonType": "objectId"},
			"line_user_id": bson.M{"bsonType": "string"},
			"name":         bson.M{"bsonType": "string"},
			"note":         bson.M{"bsonType": "string"},
		},
	},
}
