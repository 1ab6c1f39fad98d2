package rtapp

// Version is replied to DIO_READ_VERSION. Override at link time with
// -ldflags "-X github.com/robotalks/dio.go/pkg/rtapp.Version=...".
var Version = "dio-rt 1.0.0"
