package bolt

import "github.com/Gudahtt/bolt/packstream"

// Bolt v1 message signatures.
const (
	sigInit       byte = 0x01
	sigRun        byte = 0x10
	sigDiscardAll byte = 0x2F
	sigPullAll    byte = 0x3F
	sigAckFailure byte = 0x0E
	sigReset      byte = 0x0F
	sigSuccess    byte = 0x70
	sigRecord     byte = 0x71
	sigIgnored    byte = 0x7E
	sigFailure    byte = 0x7F
)

// Graph value structure signatures.
const (
	sigNode                byte = 0x4E
	sigRelationship        byte = 0x52
	sigUnboundRelationship byte = 0x72
	sigPath                byte = 0x50
)

func initMessage(clientName string, authToken packstream.Value) packstream.Value {
	return packstream.Struct(sigInit, packstream.String(clientName), authToken)
}

func runMessage(statement string, parameters packstream.Value) packstream.Value {
	return packstream.Struct(sigRun, packstream.String(statement), parameters)
}

func discardAllMessage() packstream.Value {
	return packstream.Struct(sigDiscardAll)
}

func pullAllMessage() packstream.Value {
	return packstream.Struct(sigPullAll)
}

func ackFailureMessage() packstream.Value {
	return packstream.Struct(sigAckFailure)
}

func resetMessage() packstream.Value {
	return packstream.Struct(sigReset)
}

// messageKind classifies a decoded Structure as one of the server->client
// message kinds.
type messageKind int

const (
	msgUnknown messageKind = iota
	msgSuccess
	msgRecord
	msgIgnored
	msgFailure
)

func classify(v packstream.Value) messageKind {
	if v.Kind != packstream.KindStruct {
		return msgUnknown
	}
	switch v.Signature {
	case sigSuccess:
		return msgSuccess
	case sigRecord:
		return msgRecord
	case sigIgnored:
		return msgIgnored
	case sigFailure:
		return msgFailure
	default:
		return msgUnknown
	}
}
