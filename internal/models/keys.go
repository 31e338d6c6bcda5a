package models

import (
	"encoding/json"
	"time"
)

type KeyInfo struct {
	Key       string    `json:"key"`
	Route     uint8     `json:"route"`
	Routes    uint8     `json:"routes"`
	Timestamp uint64    `json:"timestamp"`
	Time      time.Time `json:"time"`
}

type KeysResponse struct {
	Keys []KeyInfo `json:"keys"`
}

type TxKeyInfo struct {
	Key       string    `json:"key"`
	Timestamp uint64    `json:"timestamp"`
	Time      time.Time `json:"time"`
}

type TxKeysResponse struct {
	Keys []TxKeyInfo `json:"keys"`
}

type Base62Response struct {
	Value   uint64 `json:"value"`
	Encoded string `json:"encoded"`
}

type RecordRequest struct {
	Value  json.RawMessage `json:"value"`
	Status *Status         `json:"status,omitempty"`
}

type RouteCountsResponse struct {
	Routes uint8   `json:"routes"`
	Counts []int64 `json:"counts"`
}
