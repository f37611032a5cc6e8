// Package feed decodes raw HOSE BUSD wire records and provides the line
// sources the replay loop reads from.
package feed

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/supneo2025-ops/vwap-prediction/internal/domain/models"
)

// Reject reasons, recorded per rejected line. Rejection is never an error:
// the feed carries record types and garbage we intentionally skip.
const (
	RejectEnvelope   = "envelope"
	RejectNoPayload  = "no_payload"
	RejectFieldCount = "field_count"
	RejectRecordType = "record_type"
	RejectPriceVol   = "price_volume"
	RejectSide       = "side"
	RejectServerTime = "server_time"
)

// Payload layout (pipe-delimited):
//
//	[0]  type        "MAIN" for a standard matched lot
//	[1]  symbol      optionally prefixed "L#"
//	[2]  price
//	[3]  matching volume
//	[7]  matched-by  "bu" or "sd"
//	[12] server time, ms (authoritative, mandatory)
const (
	fieldType   = 0
	fieldSymbol = 1
	fieldPrice  = 2
	fieldVolume = 3
	fieldSide   = 7
	fieldServer = 12
	minFields   = 13
)

const venuePrefix = "L#"

type envelope struct {
	Timestamp int64 `json:"timestamp"`
	Data      struct {
		Response struct {
			PayloadData string `json:"payloadData"`
		} `json:"response"`
	} `json:"data"`
}

// Decode converts one raw wire line into a Bubble. On rejection it returns
// a nil event and the reason; it never panics, whatever the input.
func Decode(line string) (*models.Bubble, string) {
	var env envelope
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &env); err != nil {
		return nil, RejectEnvelope
	}

	payload := env.Data.Response.PayloadData
	if payload == "" {
		return nil, RejectNoPayload
	}

	fields := strings.Split(payload, "|")
	if len(fields) < minFields {
		return nil, RejectFieldCount
	}

	if fields[fieldType] != "MAIN" {
		return nil, RejectRecordType
	}

	symbol := strings.TrimPrefix(fields[fieldSymbol], venuePrefix)

	price, err := strconv.ParseFloat(fields[fieldPrice], 64)
	if err != nil || price <= 0 {
		return nil, RejectPriceVol
	}
	volume, err := strconv.ParseInt(fields[fieldVolume], 10, 64)
	if err != nil || volume <= 0 {
		return nil, RejectPriceVol
	}

	side := models.Side(strings.ToLower(fields[fieldSide]))
	if !side.Valid() {
		return nil, RejectSide
	}

	serverMillis, err := strconv.ParseInt(fields[fieldServer], 10, 64)
	if err != nil {
		return nil, RejectServerTime
	}

	return &models.Bubble{
		Symbol:       symbol,
		Volume:       volume,
		Price:        price,
		ServerTime:   serverMillis * 1000,
		Timestamp:    serverMillis,
		RawTimestamp: serverMillis,
		Side:         side,
	}, ""
}
