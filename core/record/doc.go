// Package record captures dynamic operations as dyn.Invocation values,
// encodes them into tapes and replays them against other targets.
//
// A Recorder is itself a dyn.Dynamic, so any code written against the
// dynamic API can be pointed at one. Tapes carry typed argument values;
// every non-builtin argument type must be registered with RegisterType
// before a tape containing it can be encoded or decoded.
package record
