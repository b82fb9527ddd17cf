package config

type WorkerKeyStruct struct {
	AuditRequestsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	AuditRequestsQueue: "audit_requests_queue",
}
