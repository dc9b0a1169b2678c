package extract

import (
	"testing"

	"github.com/mpetrov/archmap/internal/entity"
)

func TestExtractPythonServiceClass(t *testing.T) {
	f := srcFile("app/billing.py", entity.LangPython, nil, `class BillingService:
    def charge(self, order):
        return PaymentClient.post(order)
`)
	services, warns := NewServiceExtractor().ExtractFile(f)
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
	if len(services) != 1 {
		t.Fatalf("got %d services, want 1", len(services))
	}
	s := services[0]
	if s.Name != "BillingService" {
		t.Errorf("name = %q, want BillingService", s.Name)
	}
	if s.Confidence != ConfStrong {
		t.Errorf("confidence = %v, want %v", s.Confidence, ConfStrong)
	}

	found := false
	for _, r := range s.Refs {
		if r == "PaymentClient" {
			found = true
		}
		if r == "BillingService" {
			t.Errorf("refs include the service itself: %v", s.Refs)
		}
	}
	if !found {
		t.Errorf("refs = %v, want PaymentClient", s.Refs)
	}
}

func TestExtractTaggedPlainClassAsService(t *testing.T) {
	f := srcFile("app/services/mailer.py", entity.LangPython, []entity.Kind{entity.KindService},
		`class Mailer:
    def send(self):
        pass
`)
	services, _ := NewServiceExtractor().ExtractFile(f)
	if len(services) != 1 || services[0].Name != "Mailer" {
		t.Fatalf("got %+v, want one Mailer service", services)
	}
	if services[0].Confidence != ConfConvention+tagBoost {
		t.Errorf("confidence = %v, want %v", services[0].Confidence, ConfConvention+tagBoost)
	}
}

func TestExtractModuleLevelService(t *testing.T) {
	f := srcFile("services/invoice_tasks.py", entity.LangPython, []entity.Kind{entity.KindService},
		`def send_invoice(order):
    pass

def cancel_invoice(order):
    pass
`)
	services, _ := NewServiceExtractor().ExtractFile(f)
	if len(services) != 1 {
		t.Fatalf("got %d services, want 1 module-level service", len(services))
	}
	if services[0].Name != "InvoiceTasks" {
		t.Errorf("name = %q, want InvoiceTasks", services[0].Name)
	}
	if services[0].Confidence != ConfWeak {
		t.Errorf("confidence = %v, want %v", services[0].Confidence, ConfWeak)
	}
}

func TestExtractJSServiceObject(t *testing.T) {
	f := srcFile("src/api/billing.js", entity.LangJavaScript, nil, `export const billingApi = {
  charge(order) {
    return httpClient.post('/charges', order);
  },
};

class PaymentManager {
  refund() {}
}
`)
	services, _ := NewServiceExtractor().ExtractFile(f)
	if len(services) != 2 {
		t.Fatalf("got %d services, want 2: %+v", len(services), services)
	}
	if services[0].Name != "billingApi" || services[1].Name != "PaymentManager" {
		t.Errorf("names = %q, %q", services[0].Name, services[1].Name)
	}
}

func TestExtractRubyServiceClass(t *testing.T) {
	f := srcFile("app/services/checkout_service.rb", entity.LangRuby, []entity.Kind{entity.KindService},
		`class CheckoutService
  def call
  end
end
`)
	services, _ := NewServiceExtractor().ExtractFile(f)
	if len(services) != 1 || services[0].Name != "CheckoutService" {
		t.Fatalf("got %+v, want one CheckoutService", services)
	}
}
