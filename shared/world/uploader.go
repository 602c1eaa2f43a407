package world

import "Blockscope/shared/meshing"

// GPUBuffer é um buffer de vértices já enviado ao dispositivo.
type GPUBuffer interface {
	VertexCount() int
	Release()
}

// Uploader envia os vértices de um chunk (layout de 9 floats) ao dispositivo.
type Uploader interface {
	Upload(vertices []float32) GPUBuffer
}

// CPUUploader mantém os vértices em memória. Usado pelo servidor headless e pelos testes.
type CPUUploader struct {
	uploads  int
	releases int
}

// CPUBuffer é o buffer em memória do CPUUploader.
type CPUBuffer struct {
	Vertices []float32
	owner    *CPUUploader
	released bool
}

// Upload guarda os vértices.
func (u *CPUUploader) Upload(vertices []float32) GPUBuffer {
	u.uploads++
	return &CPUBuffer{Vertices: vertices, owner: u}
}

// Live retorna quantos buffers ainda não foram liberados.
func (u *CPUUploader) Live() int { return u.uploads - u.releases }

// Uploads retorna o total de envios.
func (u *CPUUploader) Uploads() int { return u.uploads }

// VertexCount retorna o número de vértices.
func (b *CPUBuffer) VertexCount() int { return len(b.Vertices) / meshing.FloatsPerVertex }

// Release libera o buffer; chamadas repetidas são ignoradas.
func (b *CPUBuffer) Release() {
	if b.released {
		return
	}
	b.released = true
	b.Vertices = nil
	b.owner.releases++
}

// Released indica se o buffer já foi liberado.
func (b *CPUBuffer) Released() bool { return b.released }
