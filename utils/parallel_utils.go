package utils

import (
	"fmt"
	"runtime"
	"sync"
)

// MailBox carries messages between partitions, one buffered channel per receiver
type MailBox[T any] struct {
	NP           int
	MessageChans []chan T // One for each thread
}

func NewMailBox[T any](NP, depth int) *MailBox[T] {
	mb := &MailBox[T]{
		NP:           NP,
		MessageChans: make([]chan T, NP),
	}
	for n := 0; n < NP; n++ {
		mb.MessageChans[n] = make(chan T, depth*NP)
	}
	return mb
}

func (mb *MailBox[T]) PostMessage(myThread, targetThread int, msg T) {
	if targetThread < 0 || targetThread > mb.NP-1 {
		panic(fmt.Sprintf("Target thread %d out of bounds", targetThread))
	}
	mb.MessageChans[targetThread] <- msg
}

func (mb *MailBox[T]) PostMessageToAll(myThread int, msg T) {
	for k := 0; k < mb.NP; k++ {
		if k != myThread {
			mb.PostMessage(myThread, k, msg)
		}
	}
}

// ReceiveMessage blocks until a message addressed to myThread arrives
func (mb *MailBox[T]) ReceiveMessage(myThread int) T {
	return <-mb.MessageChans[myThread]
}

// Reducer sums scalars over every mesh partition. The call blocks until all
// partitions have contributed and every partition receives the same result.
type Reducer interface {
	AllReduceSum(local []float64) (global []float64)
	Rank() int
	Size() int
}

// LocalReducer is the single partition case
type LocalReducer struct{}

func (LocalReducer) AllReduceSum(local []float64) (global []float64) {
	global = make([]float64, len(local))
	copy(global, local)
	return
}
func (LocalReducer) Rank() int { return 0 }
func (LocalReducer) Size() int { return 1 }

type reduceMsg struct {
	from, round int
	values      []float64
}

// ReduceComm connects NP in-process partitions through a MailBox. Each
// partition obtains its Reducer handle via Rank(n) and must call AllReduceSum
// the same number of times as every other partition.
type ReduceComm struct {
	mb    *MailBox[reduceMsg]
	ranks []*mailBoxReducer
}

func NewReduceComm(NP int) (rc *ReduceComm) {
	rc = &ReduceComm{
		// A partition can run at most one round ahead of the slowest one
		mb:    NewMailBox[reduceMsg](NP, 2),
		ranks: make([]*mailBoxReducer, NP),
	}
	for n := 0; n < NP; n++ {
		rc.ranks[n] = &mailBoxReducer{
			comm:    rc,
			rank:    n,
			pending: make(map[int][]reduceMsg),
		}
	}
	return
}

func (rc *ReduceComm) Rank(n int) Reducer { return rc.ranks[n] }

type mailBoxReducer struct {
	comm    *ReduceComm
	rank    int
	round   int
	pending map[int][]reduceMsg // Early arrivals from the next round
}

func (r *mailBoxReducer) Rank() int { return r.rank }
func (r *mailBoxReducer) Size() int { return r.comm.mb.NP }

func (r *mailBoxReducer) AllReduceSum(local []float64) (global []float64) {
	var (
		NP    = r.comm.mb.NP
		parts = make([][]float64, NP)
		got   = 1
	)
	mine := make([]float64, len(local))
	copy(mine, local)
	parts[r.rank] = mine
	r.comm.mb.PostMessageToAll(r.rank, reduceMsg{from: r.rank, round: r.round, values: mine})
	for _, msg := range r.pending[r.round] {
		parts[msg.from] = msg.values
		got++
	}
	delete(r.pending, r.round)
	for got < NP {
		msg := r.comm.mb.ReceiveMessage(r.rank)
		if msg.round != r.round {
			r.pending[msg.round] = append(r.pending[msg.round], msg)
			continue
		}
		parts[msg.from] = msg.values
		got++
	}
	// Summing in rank order gives every partition bit identical results
	global = make([]float64, len(local))
	for n := 0; n < NP; n++ {
		if len(parts[n]) != len(local) {
			panic(fmt.Errorf("all-reduce length mismatch from partition %d: %d != %d",
				n, len(parts[n]), len(local)))
		}
		for i, v := range parts[n] {
			global[i] += v
		}
	}
	r.round++
	return
}

type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketDimension(bn int) (kMax int) {
	if bn == -1 {
		kMax = pm.MaxIndex
		return
	}
	var (
		k1, k2 = pm.GetBucketRange(bn)
	)
	kMax = k2 - k1
	return
}

func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	// This routine splits one dimension into c.ParallelDegree pieces, with a maximum imbalance of one item
	var (
		Npart            = pm.MaxIndex / (pm.ParallelDegree)
		startAdd, endAdd int
		remainder        int
	)
	remainder = pm.MaxIndex % pm.ParallelDegree
	if remainder != 0 { // spread the remainder over the first chunks evenly
		if threadNum+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = threadNum
			endAdd = 1
		}
	}
	bucket[0] = threadNum*Npart + startAdd
	bucket[1] = bucket[0] + Npart + endAdd
	return
}

// ParallelFor runs f over every bucket of the partition map, one goroutine per
// bucket, and returns when all have finished
func (pm *PartitionMap) ParallelFor(f func(bucket, kMin, kMax int)) {
	var wg sync.WaitGroup
	for np := 0; np < pm.ParallelDegree; np++ {
		if pm.GetBucketDimension(np) == 0 {
			continue
		}
		kMin, kMax := pm.GetBucketRange(np)
		wg.Add(1)
		go func(np, kMin, kMax int) {
			defer wg.Done()
			f(np, kMin, kMax)
		}(np, kMin, kMax)
	}
	wg.Wait()
}

// ParallelDegree returns the thread count for a loop of Kmax items
func ParallelDegree(ProcLimit, Kmax int) (degree int) {
	if ProcLimit != 0 {
		degree = ProcLimit
	} else {
		degree = runtime.NumCPU()
	}
	if degree > Kmax {
		degree = 1
	}
	if degree < 1 {
		degree = 1
	}
	return
}
