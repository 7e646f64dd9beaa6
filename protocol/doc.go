// Package protocol holds the wire vocabulary of the Sony BKM-10r control
// link.
//
// Every unit on the link is a 3-byte frame. Two families exist:
//
//	Bank select:  [0x49][b1][b2]        IEN, ISW, ILE, ICC, IMT
//	Key/encoder:  [0x44][group][value]  value is a key bitmask, or an
//	                                    encoder delta while IEN is selected
//
// The monitor interprets a data frame relative to the most recently selected
// bank. ISW (switches) is the rest state; anything sent under IEN must be
// followed by a return to ISW.
//
// The link is write-only from the host side. Decoder exists for inspecting
// captured or sniffed host traffic, not for reading monitor replies.
package protocol
