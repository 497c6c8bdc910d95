// Package dynamodb implements the application's repositories on a single
// DynamoDB table. Every item of a target lives in the TARGET#<id> partition
// so retention cleanup and per-target reads stay single-partition queries.
//
// Sort key layout:
//
//	METADATA                               target row (GSI1: NICKNAME#<nickname>)
//	LOCK                                   report lock row
//	RESPONSE#<session>#<question>          one vote record
//	NOTIF#<created-at-nano>#<id>           notification log entry
//
// Questions live under the shared QUESTION partition. WebSocket connections
// live in their own table keyed by connection id.
package dynamodb

import "fmt"

const (
	skMetadata       = "METADATA"
	skLock           = "LOCK"
	responsePrefix   = "RESPONSE#"
	notifPrefix      = "NOTIF#"
	questionPK       = "QUESTION"
	entityTarget     = "TARGET"
	entityQuestion   = "QUESTION"
	entityResponse   = "RESPONSE"
	entityLock       = "REPORT_LOCK"
	entityNotif      = "NOTIFICATION"
	timeFormatNano   = "2006-01-02T15:04:05.000000000Z07:00"
)

func targetPK(targetID string) string {
	return fmt.Sprintf("TARGET#%s", targetID)
}

func nicknameGSI1PK(nickname string) string {
	return fmt.Sprintf("NICKNAME#%s", nickname)
}

func questionSK(questionID string) string {
	return fmt.Sprintf("QUESTION#%s", questionID)
}

func responseSK(sessionToken, questionID string) string {
	return fmt.Sprintf("%s%s#%s", responsePrefix, sessionToken, questionID)
}

func notifSK(createdAtNano, notificationID string) string {
	return fmt.Sprintf("%s%s#%s", notifPrefix, createdAtNano, notificationID)
}
