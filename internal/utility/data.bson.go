package utility

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToMap chuyển đổi struct thành map thông qua bson marshal/unmarshal.
// Dùng bởi base service để thêm timestamps vào document trước khi ghi.
func ToMap(s interface{}) (map[string]interface{}, error) {
	var stringInterfaceMap map[string]interface{}
	raw, err := bson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("bson marshal failed: %w", err)
	}
	err = bson.Unmarshal(raw, &stringInterfaceMap)
	if err != nil {
		return nil, fmt.Errorf("bson unmarshal failed: %w", err)
	}
	return stringInterfaceMap, nil
}

// String2ObjectID chuyển chuỗi hex thành ObjectID.
// Chuỗi không hợp lệ trả về NilObjectID (caller phải validate trước bằng primitive.IsValidObjectID).
func String2ObjectID(id string) primitive.ObjectID {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID
	}
	return objID
}

// ObjectID2String chuyển ObjectID thành chuỗi hex.
func ObjectID2String(id primitive.ObjectID) string {
	return id.Hex()
}
