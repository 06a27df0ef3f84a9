// Package dispatch launches and supervises the opencode agent subprocess.
//
// A resolved configuration plus pass-through arguments becomes a launch
// spec: the located executable, derived flags, the child environment with
// credentials injected, and a working directory. A captured child runs in
// its own process group; timeouts and interrupts terminate the whole group
// so no agent-spawned subprocess survives the wrapper. An interactive child
// shares the wrapper's group and so stays in the terminal's foreground
// group; it is signalled directly.
//
// A nonzero child exit is not a dispatch failure. It is reported through
// Result and left for the caller to interpret.
package dispatch
