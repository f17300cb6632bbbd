package packstream

// Marker bytes, exhaustive for Bolt v1 PackStream.
const (
	markerNull  = 0xC0
	markerFloat = 0xC1
	markerFalse = 0xC2
	markerTrue  = 0xC3

	markerInt8  = 0xC8
	markerInt16 = 0xC9
	markerInt32 = 0xCA
	markerInt64 = 0xCB

	markerTinyStringBase = 0x80
	markerString8        = 0xD0
	markerString16       = 0xD1
	markerString32       = 0xD2

	markerTinyListBase = 0x90
	markerList8        = 0xD4
	markerList16       = 0xD5
	markerList32       = 0xD6

	markerTinyMapBase = 0xA0
	markerMap8        = 0xD8
	markerMap16       = 0xD9
	markerMap32       = 0xDA

	markerTinyStructBase = 0xB0
	markerStruct8        = 0xDC
	markerStruct16       = 0xDD

	tinyIntMin = -16
	tinyIntMax = 127

	int8Min = -128
	int8Max = 127

	int16Min = -32768
	int16Max = 32767

	int32Min = -2147483648
	int32Max = 2147483647
)
