// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package dtrace

import "fmt"

// Errno is a libdtrace error number (EDT_*).
type Errno int

// libdtrace error numbers, from dt_errtags.h.
//
//nolint:revive,stylecheck // Names match libdtrace.
const (
	EDT_VERSION      Errno = 1000 // client is requesting unsupported version
	EDT_VERSINVAL    Errno = 1001 // version string is invalid or overflows
	EDT_VERSUNDEF    Errno = 1002 // requested API version is not defined
	EDT_VERSREDUCED  Errno = 1003 // requested API version has been reduced
	EDT_CTF          Errno = 1004 // libctf called failed (dt_ctferr has more)
	EDT_COMPILER     Errno = 1005 // error in D program compilation
	EDT_NOTUPREG     Errno = 1006 // tuple register allocation failure
	EDT_NOMEM        Errno = 1007 // memory allocation failure
	EDT_INT2BIG      Errno = 1008 // integer limit exceeded
	EDT_STR2BIG      Errno = 1009 // string limit exceeded
	EDT_NOMOD        Errno = 1010 // unknown module name
	EDT_NOPROV       Errno = 1011 // unknown provider name
	EDT_NOPROBE      Errno = 1012 // unknown probe name
	EDT_NOSYM        Errno = 1013 // unknown symbol name
	EDT_NOSYMADDR    Errno = 1014 // no symbol corresponds to address
	EDT_NOTYPE       Errno = 1015 // unknown type name
	EDT_NOVAR        Errno = 1016 // unknown variable name
	EDT_NOAGG        Errno = 1017 // unknown aggregation name
	EDT_BADSCOPE     Errno = 1018 // improper use of type name scoping operator
	EDT_BADSPEC      Errno = 1019 // overspecified probe description
	EDT_BADSPCV      Errno = 1020 // bad macro variable in probe description
	EDT_BADID        Errno = 1021 // invalid probe identifier
	EDT_NOTLOADED    Errno = 1022 // module is not currently loaded
	EDT_NOCTF        Errno = 1023 // module does not contain any CTF data
	EDT_DATAMODEL    Errno = 1024 // module and program data models don't match
	EDT_DIFVERS      Errno = 1025 // library has newer DIF version than driver
	EDT_BADAGG       Errno = 1026 // unrecognized aggregating action
	EDT_FIO          Errno = 1027 // file i/o error
	EDT_DIFINVAL     Errno = 1028 // invalid DIF program
	EDT_DIFSIZE      Errno = 1029 // invalid DIF size
	EDT_DIFFAULT     Errno = 1030 // failed to copyin DIF program
	EDT_BADPROBE     Errno = 1031 // bad probe description
	EDT_BADPGLOB     Errno = 1032 // bad probe description globbing pattern
	EDT_NOSCOPE      Errno = 1033 // declaration scope stack underflow
	EDT_NODECL       Errno = 1034 // declaration stack underflow
	EDT_DMISMATCH    Errno = 1035 // record list does not match statement
	EDT_DOFFSET      Errno = 1036 // record data offset error
	EDT_DALIGN       Errno = 1037 // record data alignment error
	EDT_BADOPTNAME   Errno = 1038 // invalid dtrace_setopt option name
	EDT_BADOPTVAL    Errno = 1039 // invalid dtrace_setopt option value
	EDT_BADOPTCTX    Errno = 1040 // invalid dtrace_setopt option context
	EDT_CPPFORK      Errno = 1041 // failed to fork preprocessor
	EDT_CPPEXEC      Errno = 1042 // failed to exec preprocessor
	EDT_CPPENT       Errno = 1043 // preprocessor not found
	EDT_CPPERR       Errno = 1044 // unknown preprocessor error
	EDT_SYMOFLOW     Errno = 1045 // external symbol table overflow
	EDT_ACTIVE       Errno = 1046 // operation illegal when tracing is active
	EDT_DESTRUCTIVE  Errno = 1047 // destructive actions not allowed
	EDT_NOANON       Errno = 1048 // no anonymous tracing state
	EDT_ISANON       Errno = 1049 // can't claim anon state and enable probes
	EDT_ENDTOOBIG    Errno = 1050 // END enablings exceed size of prncpl buffer
	EDT_NOCONV       Errno = 1051 // failed to load type for printf conversion
	EDT_BADCONV      Errno = 1052 // incomplete printf conversion
	EDT_BADERROR     Errno = 1053 // invalid library ERROR action
	EDT_ERRABORT     Errno = 1054 // abort due to error
	EDT_DROPABORT    Errno = 1055 // abort due to drop
	EDT_DIRABORT     Errno = 1056 // abort explicitly directed
	EDT_BADRVAL      Errno = 1057 // invalid return value from callback
	EDT_BADNORMAL    Errno = 1058 // invalid normalization
	EDT_BUFTOOSMALL  Errno = 1059 // enabling exceeds size of buffer
	EDT_BADTRUNC     Errno = 1060 // invalid truncation
	EDT_BUSY         Errno = 1061 // device busy (active kernel debugger)
	EDT_ACCESS       Errno = 1062 // insufficient privileges to use DTrace
	EDT_NOENT        Errno = 1063 // dtrace device not available
	EDT_BRICKED      Errno = 1064 // abort due to systemic unresponsiveness
	EDT_HARDWIRE     Errno = 1065 // failed to load hard-wired definitions
	EDT_ELFVERSION   Errno = 1066 // libelf is out-of-date w.r.t libdtrace
	EDT_NOBUFFERED   Errno = 1067 // attempt to buffer output without handler
	EDT_UNSTABLE     Errno = 1068 // description matched unstable set of probes
	EDT_BADSETOPT    Errno = 1069 // invalid setopt library action
	EDT_BADSTACKPC   Errno = 1070 // invalid stack program counter size
	EDT_BADAGGVAR    Errno = 1071 // invalid aggregation variable identifier
	EDT_OVERSION     Errno = 1072 // client is requesting deprecated version
	EDT_ENABLING_ERR Errno = 1073 // failed to enable probe
	EDT_NOPROBES     Errno = 1074 // no probes sites for declared provider
	EDT_CANTLOAD     Errno = 1075 // failed to load a module
)

var errnoTable = map[Errno]struct{ name, desc string }{
	EDT_VERSION:      {"EDT_VERSION", "client is requesting unsupported version"},
	EDT_VERSINVAL:    {"EDT_VERSINVAL", "version string is invalid or overflows"},
	EDT_VERSUNDEF:    {"EDT_VERSUNDEF", "requested API version is not defined"},
	EDT_VERSREDUCED:  {"EDT_VERSREDUCED", "requested API version has been reduced"},
	EDT_CTF:          {"EDT_CTF", "libctf called failed (dt_ctferr has more)"},
	EDT_COMPILER:     {"EDT_COMPILER", "error in D program compilation"},
	EDT_NOTUPREG:     {"EDT_NOTUPREG", "tuple register allocation failure"},
	EDT_NOMEM:        {"EDT_NOMEM", "memory allocation failure"},
	EDT_INT2BIG:      {"EDT_INT2BIG", "integer limit exceeded"},
	EDT_STR2BIG:      {"EDT_STR2BIG", "string limit exceeded"},
	EDT_NOMOD:        {"EDT_NOMOD", "unknown module name"},
	EDT_NOPROV:       {"EDT_NOPROV", "unknown provider name"},
	EDT_NOPROBE:      {"EDT_NOPROBE", "unknown probe name"},
	EDT_NOSYM:        {"EDT_NOSYM", "unknown symbol name"},
	EDT_NOSYMADDR:    {"EDT_NOSYMADDR", "no symbol corresponds to address"},
	EDT_NOTYPE:       {"EDT_NOTYPE", "unknown type name"},
	EDT_NOVAR:        {"EDT_NOVAR", "unknown variable name"},
	EDT_NOAGG:        {"EDT_NOAGG", "unknown aggregation name"},
	EDT_BADSCOPE:     {"EDT_BADSCOPE", "improper use of type name scoping operator"},
	EDT_BADSPEC:      {"EDT_BADSPEC", "overspecified probe description"},
	EDT_BADSPCV:      {"EDT_BADSPCV", "bad macro variable in probe description"},
	EDT_BADID:        {"EDT_BADID", "invalid probe identifier"},
	EDT_NOTLOADED:    {"EDT_NOTLOADED", "module is not currently loaded"},
	EDT_NOCTF:        {"EDT_NOCTF", "module does not contain any CTF data"},
	EDT_DATAMODEL:    {"EDT_DATAMODEL", "module and program data models don't match"},
	EDT_DIFVERS:      {"EDT_DIFVERS", "library has newer DIF version than driver"},
	EDT_BADAGG:       {"EDT_BADAGG", "unrecognized aggregating action"},
	EDT_FIO:          {"EDT_FIO", "file i/o error"},
	EDT_DIFINVAL:     {"EDT_DIFINVAL", "invalid DIF program"},
	EDT_DIFSIZE:      {"EDT_DIFSIZE", "invalid DIF size"},
	EDT_DIFFAULT:     {"EDT_DIFFAULT", "failed to copyin DIF program"},
	EDT_BADPROBE:     {"EDT_BADPROBE", "bad probe description"},
	EDT_BADPGLOB:     {"EDT_BADPGLOB", "bad probe description globbing pattern"},
	EDT_NOSCOPE:      {"EDT_NOSCOPE", "declaration scope stack underflow"},
	EDT_NODECL:       {"EDT_NODECL", "declaration stack underflow"},
	EDT_DMISMATCH:    {"EDT_DMISMATCH", "record list does not match statement"},
	EDT_DOFFSET:      {"EDT_DOFFSET", "record data offset error"},
	EDT_DALIGN:       {"EDT_DALIGN", "record data alignment error"},
	EDT_BADOPTNAME:   {"EDT_BADOPTNAME", "invalid dtrace_setopt option name"},
	EDT_BADOPTVAL:    {"EDT_BADOPTVAL", "invalid dtrace_setopt option value"},
	EDT_BADOPTCTX:    {"EDT_BADOPTCTX", "invalid dtrace_setopt option context"},
	EDT_CPPFORK:      {"EDT_CPPFORK", "failed to fork preprocessor"},
	EDT_CPPEXEC:      {"EDT_CPPEXEC", "failed to exec preprocessor"},
	EDT_CPPENT:       {"EDT_CPPENT", "preprocessor not found"},
	EDT_CPPERR:       {"EDT_CPPERR", "unknown preprocessor error"},
	EDT_SYMOFLOW:     {"EDT_SYMOFLOW", "external symbol table overflow"},
	EDT_ACTIVE:       {"EDT_ACTIVE", "operation illegal when tracing is active"},
	EDT_DESTRUCTIVE:  {"EDT_DESTRUCTIVE", "destructive actions not allowed"},
	EDT_NOANON:       {"EDT_NOANON", "no anonymous tracing state"},
	EDT_ISANON:       {"EDT_ISANON", "can't claim anon state and enable probes"},
	EDT_ENDTOOBIG:    {"EDT_ENDTOOBIG", "END enablings exceed size of prncpl buffer"},
	EDT_NOCONV:       {"EDT_NOCONV", "failed to load type for printf conversion"},
	EDT_BADCONV:      {"EDT_BADCONV", "incomplete printf conversion"},
	EDT_BADERROR:     {"EDT_BADERROR", "invalid library ERROR action"},
	EDT_ERRABORT:     {"EDT_ERRABORT", "abort due to error"},
	EDT_DROPABORT:    {"EDT_DROPABORT", "abort due to drop"},
	EDT_DIRABORT:     {"EDT_DIRABORT", "abort explicitly directed"},
	EDT_BADRVAL:      {"EDT_BADRVAL", "invalid return value from callback"},
	EDT_BADNORMAL:    {"EDT_BADNORMAL", "invalid normalization"},
	EDT_BUFTOOSMALL:  {"EDT_BUFTOOSMALL", "enabling exceeds size of buffer"},
	EDT_BADTRUNC:     {"EDT_BADTRUNC", "invalid truncation"},
	EDT_BUSY:         {"EDT_BUSY", "device busy (active kernel debugger)"},
	EDT_ACCESS:       {"EDT_ACCESS", "insufficient privileges to use DTrace"},
	EDT_NOENT:        {"EDT_NOENT", "dtrace device not available"},
	EDT_BRICKED:      {"EDT_BRICKED", "abort due to systemic unresponsiveness"},
	EDT_HARDWIRE:     {"EDT_HARDWIRE", "failed to load hard-wired definitions"},
	EDT_ELFVERSION:   {"EDT_ELFVERSION", "libelf is out-of-date w.r.t libdtrace"},
	EDT_NOBUFFERED:   {"EDT_NOBUFFERED", "attempt to buffer output without handler"},
	EDT_UNSTABLE:     {"EDT_UNSTABLE", "description matched unstable set of probes"},
	EDT_BADSETOPT:    {"EDT_BADSETOPT", "invalid setopt library action"},
	EDT_BADSTACKPC:   {"EDT_BADSTACKPC", "invalid stack program counter size"},
	EDT_BADAGGVAR:    {"EDT_BADAGGVAR", "invalid aggregation variable identifier"},
	EDT_OVERSION:     {"EDT_OVERSION", "client is requesting deprecated version"},
	EDT_ENABLING_ERR: {"EDT_ENABLING_ERR", "failed to enable probe"},
	EDT_NOPROBES:     {"EDT_NOPROBES", "no probes sites for declared provider"},
	EDT_CANTLOAD:     {"EDT_CANTLOAD", "failed to load a module"},
}

// Name returns the libdtrace name of e, such as "EDT_NOENT".
func (e Errno) Name() string {
	if v, ok := errnoTable[e]; ok {
		return v.name
	}
	return fmt.Sprintf("Errno(%d)", int(e))
}

func (e Errno) Error() string {
	if v, ok := errnoTable[e]; ok {
		return v.desc
	}
	return fmt.Sprintf("dtrace error %d", int(e))
}

func (e Errno) known() bool {
	_, ok := errnoTable[e]
	return ok
}
