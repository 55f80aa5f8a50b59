package closer

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Func закрывает один ресурс приложения.
type Func func(ctx context.Context) error

type resource struct {
	name  string
	close Func
}

// Closer закрывает зарегистрированные ресурсы в обратном порядке (LIFO):
// первым закрывается то, что создано последним.
type Closer struct {
	mu        sync.Mutex
	resources []resource
	once      sync.Once
	err       error
}

func New() *Closer {
	return &Closer{}
}

// Add регистрирует ресурс под именем, которое попадет в текст ошибки.
func (c *Closer) Add(name string, f Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources = append(c.resources, resource{name: name, close: f})
}

// AddFunc регистрирует ресурс с закрытием без ошибки и контекста, например pgxpool.
func (c *Closer) AddFunc(name string, f func()) {
	c.Add(name, func(context.Context) error {
		f()
		return nil
	})
}

// Close вызывается один раз; повторные вызовы возвращают первый результат.
// Если ctx истекает, оставшиеся ресурсы не ждут друг друга и закрываются параллельно.
func (c *Closer) Close(ctx context.Context) error {
	c.once.Do(func() {
		c.mu.Lock()
		resources := c.resources
		c.mu.Unlock()

		c.err = closeAll(ctx, resources)
	})

	return c.err
}

func closeAll(ctx context.Context, resources []resource) error {
	var errs []error

	for i := len(resources) - 1; i >= 0; i-- {
		res := resources[i]
		done := make(chan error, 1)
		go func() {
			done <- res.close(ctx)
		}()

		select {
		case err := <-done:
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", res.name, err))
			}
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("%s: %w", res.name, ctx.Err()))
			errs = append(errs, closeRest(ctx, resources[:i])...)
			return errors.Join(errs...)
		}
	}

	return errors.Join(errs...)
}

func closeRest(ctx context.Context, resources []resource) []error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, res := range resources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := res.close(context.WithoutCancel(ctx)); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s (forced): %w", res.name, err))
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return errs
}
