package utils

import "encoding/json"

func StructToMap(data any) map[string]any {
	var result map[string]any
	b, _ := json.Marshal(data)
	_ = json.Unmarshal(b, &result)
	return result
}

func MapToStruct[T any](values map[string]any) (T, error) {
	var result T
	b, err := json.Marshal(values)
	if err != nil {
		return result, err
	}
	err = json.Unmarshal(b, &result)
	return result, err
}
