// Package fcp implements the Frame Command Protocol used on the ground to
// satellite radio link.
//
// A frame is the station callsign (without terminator), followed by a single
// function ID byte and optional data. Function IDs in the private range carry
// their optional data AES-128 encrypted, prefixed by the data length and the
// shared password.
package fcp

import (
	"crypto/aes"
	"fmt"
)

// Protocol limits.
const (
	MaxStringLength      = 32
	MaxOptDataLength     = 128
	MaxRadioBufferLength = 256
	MaxNumOfBlocks       = 3

	blockSize = aes.BlockSize
)

// FunctionID identifies the command or response carried by a frame.
type FunctionID byte

// Function ID ranges.
const (
	ResponseOffset     FunctionID = 0x10
	PrivateOffset      FunctionID = 0x20
	NumPrivateCommands            = 11
)

// Public commands.
const (
	CmdPing FunctionID = iota
	CmdRetransmit
	CmdRetransmitCustom
	CmdTransmitSystemInfo
	CmdGetPacketInfo
	CmdGetStatistics
)

// Responses.
const (
	RespPong FunctionID = ResponseOffset + iota
	RespRepeatedMessage
	RespRepeatedMessageCustom
	RespSystemInfo
	RespPacketInfo
	RespStatistics
	RespDeploymentState
	RespRecordedSolarCells
)

// Private (encrypted) commands.
const (
	CmdDeploy FunctionID = PrivateOffset + iota
	CmdRestart
	CmdWipeEEPROM
	CmdSetTransmitEnable
	CmdSetCallsign
	CmdSetSpreadingFactorMode
	CmdSetMPPTMode
	CmdSetLowPowerEnable
	CmdSetReceiveWindows
	CmdRecordSolarCells
	CmdRoute
)

var functionNames = map[FunctionID]string{
	CmdPing:                   "CMD_PING",
	CmdRetransmit:             "CMD_RETRANSMIT",
	CmdRetransmitCustom:       "CMD_RETRANSMIT_CUSTOM",
	CmdTransmitSystemInfo:     "CMD_TRANSMIT_SYSTEM_INFO",
	CmdGetPacketInfo:          "CMD_GET_PACKET_INFO",
	CmdGetStatistics:          "CMD_GET_STATISTICS",
	RespPong:                  "RESP_PONG",
	RespRepeatedMessage:       "RESP_REPEATED_MESSAGE",
	RespRepeatedMessageCustom: "RESP_REPEATED_MESSAGE_CUSTOM",
	RespSystemInfo:            "RESP_SYSTEM_INFO",
	RespPacketInfo:            "RESP_PACKET_INFO",
	RespStatistics:            "RESP_STATISTICS",
	RespDeploymentState:       "RESP_DEPLOYMENT_STATE",
	RespRecordedSolarCells:    "RESP_RECORDED_SOLAR_CELLS",
	CmdDeploy:                 "CMD_DEPLOY",
	CmdRestart:                "CMD_RESTART",
	CmdWipeEEPROM:             "CMD_WIPE_EEPROM",
	CmdSetTransmitEnable:      "CMD_SET_TRANSMIT_ENABLE",
	CmdSetCallsign:            "CMD_SET_CALLSIGN",
	CmdSetSpreadingFactorMode: "CMD_SET_SF_MODE",
	CmdSetMPPTMode:            "CMD_SET_MPPT_MODE",
	CmdSetLowPowerEnable:      "CMD_SET_LOW_POWER_ENABLE",
	CmdSetReceiveWindows:      "CMD_SET_RECEIVE_WINDOWS",
	CmdRecordSolarCells:       "CMD_RECORD_SOLAR_CELLS",
	CmdRoute:                  "CMD_ROUTE",
}

// String implements fmt.Stringer.
func (f FunctionID) String() string {
	if name, ok := functionNames[f]; ok {
		return name
	}
	return fmt.Sprintf("0x%02x", byte(f))
}

// Private returns true when the function ID lies in the encrypted range.
func (f FunctionID) Private() bool {
	return f >= PrivateOffset
}

// Mode defines how the optional data of a frame is carried.
type Mode int

// Available modes.
const (
	ModePlaintext Mode = iota
	ModeEncrypted
)

func (m Mode) String() string {
	if m == ModeEncrypted {
		return "encrypted"
	}
	return "plaintext"
}

// SelectMode returns the mode for the given function ID. The decision is made
// on the ID range only.
func SelectMode(id FunctionID) Mode {
	if id.Private() {
		return ModeEncrypted
	}
	return ModePlaintext
}
