package actor

// DrainTask is the unit of work the scheduler queues and executes: "drain
// up to a batch of messages for this actor." The scheduler schedules
// drain tasks, not individual messages (spec.md §2, §3). actorRef is a
// strong reference keeping the actor (and its mailbox) alive for at least
// as long as this task exists in a queue or is executing; token is the
// value of the actor's pending flag at publication time, rechecked by the
// worker at execution time to detect and discard stale tasks.
type DrainTask struct {
	actorRef *Actor
	token    uint32
}

// stale reports whether this task's token no longer matches the actor's
// current pending generation, meaning a fresher task has since been
// published and this one should be dropped without draining.
func (t DrainTask) stale() bool {
	return t.actorRef == nil || !t.actorRef.mailbox.matchesGeneration(t.token)
}
